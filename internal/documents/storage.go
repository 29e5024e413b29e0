package documents

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/config"
)

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("document exceeds size limit")

// Store keeps uploaded documents on disk. The workflow only ever sees
// the returned reference string, never file contents.
type Store struct {
	dir        string
	publicPath string
	maxSize    int64
	logger     *zap.Logger
}

// NewStore creates the storage directory if needed.
func NewStore(cfg config.DocumentsConfig, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return &Store{
		dir:        cfg.Dir,
		publicPath: strings.TrimRight(cfg.PublicPath, "/"),
		maxSize:    int64(cfg.MaxSizeMB) << 20,
		logger:     logger,
	}, nil
}

// Save writes the document and returns its reference. The reference is
// a generated key plus the original extension; the original name is not
// trusted for anything else.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	ext := sanitizeExt(filepath.Ext(filename))
	ref := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", err
	}
	defer f.Close()

	limited := io.LimitReader(r, s.maxSize+1)
	written, err := io.Copy(f, limited)
	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	if written > s.maxSize {
		_ = os.Remove(f.Name())
		return "", ErrTooLarge
	}

	s.logger.Debug("document stored", zap.String("ref", ref), zap.Int64("bytes", written))
	return ref, nil
}

// URLFor maps a reference to its download path.
func (s *Store) URLFor(ref string) string {
	return s.publicPath + "/" + ref
}

// Path resolves a reference to a local file path, refusing anything
// that would escape the storage directory.
func (s *Store) Path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.Contains(ref, "..") {
		return "", errors.New("invalid document reference")
	}
	path := filepath.Join(s.dir, ref)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func sanitizeExt(ext string) string {
	if ext == "" || len(ext) > 10 || !strings.HasPrefix(ext, ".") {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return strings.ToLower(ext)
}
