package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/services"
)

// AdminHandler serves the admin dashboard reads that span entities.
type AdminHandler struct {
	Orders *services.OrderService
}

// GET /api/admin/customers
func (h *AdminHandler) Customers(c *fiber.Ctx) error {
	items, meta, err := h.Orders.Customers(c.UserContext(), params(c))
	if err != nil {
		return fail(c, err)
	}
	return listing(c, "customers", items, meta)
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Orders.Stats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, st)
}
