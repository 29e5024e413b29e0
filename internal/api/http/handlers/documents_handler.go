package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/debtor-registry/internal/auth"
	"github.com/spec-kit/debtor-registry/internal/documents"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

// DocumentsHandler stores and serves supporting documents, the files
// users attach to requests and deletion requests.
type DocumentsHandler struct {
	store *documents.Store
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(store *documents.Store) *DocumentsHandler {
	return &DocumentsHandler{store: store}
}

// Upload handles POST /documents as multipart form data. The returned
// ref goes into the document field of a request.
func (h *DocumentsHandler) Upload(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file field required", nil)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer src.Close()

	ref, err := h.store.Save(fileHeader.Filename, src)
	if err != nil {
		if errors.Is(err, documents.ErrTooLarge) {
			return apperrors.NewValidationError("file too large", map[string]any{"filename": fileHeader.Filename})
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"ref": ref,
		"url": h.store.URLFor(ref),
	}})
}

// Download handles GET /documents/:ref.
func (h *DocumentsHandler) Download(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	path, err := h.store.Path(c.Params("ref"))
	if err != nil {
		return apperrors.NewNotFound("document", map[string]any{"ref": c.Params("ref")})
	}
	return c.SendFile(path)
}
