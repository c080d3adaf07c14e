package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	applog "nyumba/internal/log"
	"nyumba/internal/services"
)

// LoadUser attaches the session user, if any, to the request.
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireAdmin answers 401 without a signed-in user and 403 for any role
// other than ADMIN.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			if sid := c.Cookies("sid"); sid != "" {
				u, _ = auth.CurrentUser(c.UserContext(), sid)
			}
		}
		if u == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return fail(c, apperr.Unauthorized("Authentication required"))
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return fail(c, apperr.Forbidden("Admin access required"))
		}
		c.Locals("user", u)
		return c.Next()
	}
}
