package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/log"
	"nyumba/internal/services"
)

type SettingsHandler struct {
	Settings *services.SettingsService
}

// GET /api/settings and GET /api/admin/settings
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	s, err := h.Settings.Get(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, s)
}

// PUT /api/admin/settings
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in services.SettingsInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	s, err := h.Settings.Update(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.settings.update", nil)
	return ok(c, fiber.StatusOK, s)
}
