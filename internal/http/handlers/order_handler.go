package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "nyumba/internal/log"
	"nyumba/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

// POST /api/orders
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in services.OrderInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	o, err := h.Order.Place(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	applog.Order(c, "order.placed", &o)
	return ok(c, fiber.StatusCreated, o)
}

// GET /api/orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	o, err := h.Order.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, o)
}

// GET /api/admin/orders
func (h *OrderHandler) AdminList(c *fiber.Ctx) error {
	items, meta, err := h.Order.List(c.UserContext(), params(c))
	if err != nil {
		return fail(c, err)
	}
	return listing(c, "orders", items, meta)
}

// PUT /api/admin/orders/:id
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var t services.Transition
	if err := bind(c, &t); err != nil {
		return fail(c, err)
	}
	id := c.Params("id")
	o, err := h.Order.Update(c.UserContext(), id, t)
	if err != nil {
		return fail(c, err)
	}
	applog.Order(c, "admin.orders.update", &o)
	return ok(c, fiber.StatusOK, o)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// POST /api/admin/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var req cancelRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return fail(c, err)
		}
	}
	id := c.Params("id")
	o, err := h.Order.Cancel(c.UserContext(), id, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	applog.Order(c, "admin.orders.cancel", &o)
	return ok(c, fiber.StatusOK, o)
}
