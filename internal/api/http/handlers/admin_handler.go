package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/debtor-registry/internal/api/dto"
	"github.com/spec-kit/debtor-registry/internal/auth"
	"github.com/spec-kit/debtor-registry/internal/domain"
	"github.com/spec-kit/debtor-registry/internal/repository"
	"github.com/spec-kit/debtor-registry/internal/service"
	apperrors "github.com/spec-kit/debtor-registry/pkg/util"
)

// AdminHandler exposes operator endpoints. Every lifecycle action is a
// bulk action over a set of request ids: a failed record reports its
// error in the result row, the rest of the batch keeps going.
type AdminHandler struct {
	workflow *service.WorkflowService
	debtors  *service.DebtorService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(workflow *service.WorkflowService, debtors *service.DebtorService) *AdminHandler {
	return &AdminHandler{workflow: workflow, debtors: debtors}
}

// ListRequests handles GET /admin/requests with optional status and
// user_id filters.
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	filter := repository.RequestFilter{}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.RequestStatus(strings.TrimSpace(part))
			if !domain.IsKnownStatus(status) {
				return apperrors.NewValidationError("unknown status", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	filter.Limit, filter.Offset = parsePagination(c)

	items, err := h.workflow.ListRequests(c.Context(), filter)
	if err != nil {
		return err
	}
	resp := dto.ListRequestsResponse{Requests: dto.FromRequests(items), Count: len(items)}
	return c.JSON(fiber.Map{"data": resp})
}

// GetRequest handles GET /admin/requests/:id.
func (h *AdminHandler) GetRequest(c *fiber.Ctx) error {
	record, err := h.workflow.GetRequest(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromRequest(record)})
}

// Review handles POST /admin/requests/review.
func (h *AdminHandler) Review(c *fiber.Ctx) error {
	return h.bulk(c, false, func(c *fiber.Ctx, operatorID, id, _ string) (string, error) {
		_, err := h.workflow.MarkUnderReview(c.Context(), operatorID, id)
		return "", err
	})
}

// Approve handles POST /admin/requests/approve. Each approved record is
// promoted into the canonical table.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	return h.bulk(c, true, func(c *fiber.Ctx, operatorID, id, _ string) (string, error) {
		_, err := h.workflow.Approve(c.Context(), operatorID, id)
		return "", err
	})
}

// Reject handles POST /admin/requests/reject. Reason applies to the
// whole batch.
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	return h.bulk(c, false, func(c *fiber.Ctx, operatorID, id, reason string) (string, error) {
		_, err := h.workflow.Reject(c.Context(), operatorID, id, reason)
		return "", err
	})
}

// ConfirmDeletion handles POST /admin/requests/confirm-deletion.
func (h *AdminHandler) ConfirmDeletion(c *fiber.Ctx) error {
	return h.bulk(c, true, func(c *fiber.Ctx, operatorID, id, _ string) (string, error) {
		res, err := h.workflow.ConfirmDeletion(c.Context(), operatorID, id)
		if err != nil {
			return "", err
		}
		if !res.CanonicalRemoved {
			return "no canonical debtor existed for this record", nil
		}
		return "", nil
	})
}

// MarkForUpdate handles POST /admin/requests/approve-update.
func (h *AdminHandler) MarkForUpdate(c *fiber.Ctx) error {
	return h.bulk(c, false, func(c *fiber.Ctx, operatorID, id, _ string) (string, error) {
		_, err := h.workflow.MarkForUpdate(c.Context(), operatorID, id)
		return "", err
	})
}

// ConfirmUpdate handles POST /admin/requests/confirm-update, copying the
// staged values over the canonical row.
func (h *AdminHandler) ConfirmUpdate(c *fiber.Ctx) error {
	return h.bulk(c, true, func(c *fiber.Ctx, operatorID, id, _ string) (string, error) {
		_, err := h.workflow.ApproveUpdate(c.Context(), operatorID, id)
		return "", err
	})
}

// RejectUpdate handles POST /admin/requests/reject-update.
func (h *AdminHandler) RejectUpdate(c *fiber.Ctx) error {
	return h.bulk(c, false, func(c *fiber.Ctx, operatorID, id, _ string) (string, error) {
		_, err := h.workflow.RejectUpdate(c.Context(), operatorID, id)
		return "", err
	})
}

type bulkFn func(c *fiber.Ctx, operatorID, id, reason string) (warning string, err error)

// bulk runs fn once per id, collecting per-record outcomes. When
// touchesCanonical is set and at least one record succeeded, the public
// debtor cache is invalidated once for the whole batch.
func (h *AdminHandler) bulk(c *fiber.Ctx, touchesCanonical bool, fn bulkFn) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.IsOperator() {
		return apperrors.NewForbidden("operator required")
	}
	var req dto.BulkActionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp := dto.BulkActionResponse{Results: make([]dto.BulkActionResult, 0, len(req.IDs))}
	for _, id := range req.IDs {
		warning, err := fn(c, principal.User.ID, id, req.Reason)
		result := dto.BulkActionResult{ID: id, OK: err == nil, Warning: warning}
		if err != nil {
			result.Error = apperrors.ToDomainError(err).Message
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, result)
	}

	if touchesCanonical && resp.Succeeded > 0 {
		h.debtors.Invalidate(c.Context())
	}
	return c.JSON(fiber.Map{"data": resp})
}
