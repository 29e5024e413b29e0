package documents

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/debtor-registry/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.DocumentsConfig{
		Dir:        t.TempDir(),
		MaxSizeMB:  1,
		PublicPath: "/documents/",
	}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestSaveAndResolve(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save("proof.PDF", strings.NewReader("contents"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(ref, ".pdf"))

	path, err := store.Path(ref)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "contents", string(data))

	require.Equal(t, "/documents/"+ref, store.URLFor(ref))
}

func TestSaveStripsHostileExtensions(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"doc.p/d", "doc.", "noext", "weird.塗"} {
		ref, err := store.Save(name, strings.NewReader("x"))
		require.NoError(t, err, name)
		require.NotContains(t, ref, "/", name)
		require.NotContains(t, ref, "..", name)
	}
}

func TestSaveRejectsOversized(t *testing.T) {
	store := newTestStore(t)

	big := strings.NewReader(strings.Repeat("a", 1<<20+1))
	_, err := store.Save("big.bin", big)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestPathRefusesTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, ref := range []string{"", "../secret", "a/b", ".."} {
		_, err := store.Path(ref)
		require.Error(t, err, ref)
	}
}
