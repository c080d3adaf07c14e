package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"nyumba/internal/apperr"
	"nyumba/internal/log"
	"nyumba/internal/services"
	"nyumba/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) setSID(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	email, valid := validate.Email(req.Email)
	if !valid || req.Password == "" {
		log.Security(c, "auth.login.fail", map[string]any{"email": req.Email, "reason": "bad_format"})
		return fail(c, services.ErrBadCreds)
	}

	// A signed-in session always gets a new id; the client's previous one is dropped.
	sid := uuid.NewString()
	u, err := h.Auth.Login(c.UserContext(), sid, strings.ToLower(email), req.Password)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
		}
		return fail(c, err)
	}
	if old := c.Cookies("sid"); old != "" {
		if err := h.Auth.Logout(c.UserContext(), old); err != nil {
			return fail(c, err)
		}
	}
	h.setSID(c, sid)

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return ok(c, fiber.StatusOK, fiber.Map{"user": u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			return fail(c, err)
		}
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return okMessage(c, "Logged out")
}

// Session reports the signed-in user, or null.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, fiber.Map{"user": currentUser(c)})
}

// CSRF hands out the token the csrf middleware issued for this client.
func (h *AuthHandler) CSRF(c *fiber.Ctx) error {
	tok, _ := c.Locals("csrf").(string)
	if tok == "" {
		tok = c.Cookies(CSRFCookie)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"csrfToken": tok})
}
