package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/debtor-registry/internal/api/dto"
	"github.com/spec-kit/debtor-registry/internal/auth"
	"github.com/spec-kit/debtor-registry/internal/service"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

// RequestsHandler manages the owner-facing staging endpoints.
type RequestsHandler struct {
	workflow *service.WorkflowService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(workflow *service.WorkflowService) *RequestsHandler {
	return &RequestsHandler{workflow: workflow}
}

// Submit handles POST /requests.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	created, err := h.workflow.Submit(c.Context(), principal.User.ID, service.SubmitInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Amount:   req.Amount,
		Address:  req.Address,
		Region:   req.Region,
		City:     req.City,
		Document: req.Document,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromRequest(created)})
}

// List handles GET /requests and returns the caller's staging records.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit, offset := parsePagination(c)
	items, err := h.workflow.ListUserRequests(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	resp := dto.ListRequestsResponse{Requests: dto.FromRequests(items), Count: len(items)}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	record, err := h.workflow.GetOwned(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(record)})
}

// Edit handles PUT /requests/:id, a direct correction of a staging row
// that has not yet been promoted.
func (h *RequestsHandler) Edit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EditRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	record, err := h.workflow.EditOwn(c.Context(), principal.User.ID, c.Params("id"), editInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(record)})
}

// Delete handles DELETE /requests/:id, removing only the staging row.
func (h *RequestsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.workflow.DeleteOwn(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// RequestEdit handles POST /requests/:id/request-edit, putting the record
// back in front of the operators.
func (h *RequestsHandler) RequestEdit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EditRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	record, err := h.workflow.RequestEdit(c.Context(), principal.User.ID, c.Params("id"), editInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(record)})
}

// RequestDeletion handles POST /requests/:id/request-deletion.
func (h *RequestsHandler) RequestDeletion(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.DeletionRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	record, err := h.workflow.RequestDeletion(c.Context(), principal.User.ID, c.Params("id"), req.Reason, req.Document)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(record)})
}

func editInput(req dto.EditRequestRequest) service.EditInput {
	return service.EditInput{
		Name:       req.Name,
		Surname:    req.Surname,
		Amount:     req.Amount,
		Address:    req.Address,
		Region:     req.Region,
		City:       req.City,
		Document:   req.Document,
		ChangeNote: req.ChangeNote,
	}
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
