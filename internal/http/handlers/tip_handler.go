package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/log"
	"nyumba/internal/services"
)

type TipHandler struct {
	Tips *services.TipService
}

// GET /api/tips
func (h *TipHandler) List(c *fiber.Ctx) error {
	page, err := h.Tips.List(c.UserContext(), params(c), true)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"tips":       page.Tips,
		"categories": page.Categories,
		"pagination": page.Meta,
	})
}

// GET /api/tips/:slug
func (h *TipHandler) Read(c *fiber.Ctx) error {
	t, err := h.Tips.Read(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, t)
}

// GET /api/admin/tips
func (h *TipHandler) AdminList(c *fiber.Ctx) error {
	page, err := h.Tips.List(c.UserContext(), params(c), false)
	if err != nil {
		return fail(c, err)
	}
	return listing(c, "tips", page.Tips, page.Meta)
}

// GET /api/admin/tips/:id
func (h *TipHandler) Get(c *fiber.Ctx) error {
	t, err := h.Tips.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, t)
}

// POST /api/admin/tips
func (h *TipHandler) Create(c *fiber.Ctx) error {
	var in services.TipInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	t, err := h.Tips.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.tip.create", map[string]any{"tip_id": t.ID, "slug": t.Slug})
	return ok(c, fiber.StatusCreated, t)
}

// PUT /api/admin/tips/:id
func (h *TipHandler) Update(c *fiber.Ctx) error {
	var in services.TipInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	t, err := h.Tips.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.tip.update", map[string]any{"tip_id": t.ID})
	return ok(c, fiber.StatusOK, t)
}

// DELETE /api/admin/tips/:id
func (h *TipHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Tips.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.tip.delete", map[string]any{"tip_id": id})
	return okMessage(c, "Tip deleted successfully")
}
