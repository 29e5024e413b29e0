package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/debtor-registry/internal/api/dto"
	"github.com/spec-kit/debtor-registry/internal/service"
)

// DebtorsHandler serves the public canonical table.
type DebtorsHandler struct {
	debtors *service.DebtorService
}

// NewDebtorsHandler constructs handler.
func NewDebtorsHandler(debtors *service.DebtorService) *DebtorsHandler {
	return &DebtorsHandler{debtors: debtors}
}

// List handles GET /debtors. Only the records promoted by an operator
// appear here. Requests without pagination params take the cached
// default listing; explicit limit/offset bypass the cache.
func (h *DebtorsHandler) List(c *fiber.Ctx) error {
	limit, offset := 0, 0
	if c.Query("limit") != "" || c.Query("offset") != "" {
		limit, offset = parsePagination(c)
	}
	items, err := h.debtors.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := dto.ListDebtorsResponse{Debtors: dto.FromDebtors(items), Count: len(items)}
	return c.JSON(fiber.Map{"data": resp})
}
