package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/log"
	"nyumba/internal/services"
)

type TestimonialHandler struct {
	Testimonials *services.TestimonialService
}

// GET /api/testimonials and GET /api/admin/testimonials
func (h *TestimonialHandler) List(c *fiber.Ctx) error {
	items, meta, err := h.Testimonials.List(c.UserContext(), params(c))
	if err != nil {
		return fail(c, err)
	}
	return listing(c, "testimonials", items, meta)
}

// GET /api/admin/testimonials/:id
func (h *TestimonialHandler) Get(c *fiber.Ctx) error {
	t, err := h.Testimonials.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, t)
}

// POST /api/admin/testimonials
func (h *TestimonialHandler) Create(c *fiber.Ctx) error {
	var in services.TestimonialInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	t, err := h.Testimonials.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.testimonial.create", map[string]any{"testimonial_id": t.ID})
	return ok(c, fiber.StatusCreated, t)
}

// PUT /api/admin/testimonials/:id
func (h *TestimonialHandler) Update(c *fiber.Ctx) error {
	var in services.TestimonialInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	t, err := h.Testimonials.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.testimonial.update", map[string]any{"testimonial_id": t.ID, "status": t.Status})
	return ok(c, fiber.StatusOK, t)
}

// DELETE /api/admin/testimonials/:id
func (h *TestimonialHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Testimonials.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.testimonial.delete", map[string]any{"testimonial_id": id})
	return okMessage(c, "Testimonial deleted successfully")
}
