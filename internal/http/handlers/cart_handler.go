package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/domain"
	applog "nyumba/internal/log"
	"nyumba/internal/services"
)

type CartHandler struct {
	Cart *services.CartService
}

type quoteRequest struct {
	Items []domain.CartItem `json:"items"`
}

// POST /api/cart/quote
func (h *CartHandler) Quote(c *fiber.Ctx) error {
	var req quoteRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	q, err := h.Cart.Quote(c.UserContext(), req.Items)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, q)
}

// POST /api/checkout/whatsapp
func (h *CartHandler) WhatsApp(c *fiber.Ctx) error {
	var in services.OrderInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.Cart.CheckoutWhatsApp(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	applog.Order(c, "order.placed.whatsapp", &out.Order)
	return ok(c, fiber.StatusCreated, out)
}
