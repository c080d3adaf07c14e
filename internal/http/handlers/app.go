package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "nyumba/internal/log"
	"nyumba/internal/media"
)

const (
	CSRFCookie = "csrf_"
	CSRFHeader = "X-Csrf-Token"
	// multipart uploads plus envelope overhead
	MaxBodySize = 6 << 20
)

type Options struct {
	CSRF         bool
	CookieSecure bool
	CORSOrigins  string
	AccessLog    bool
	// RateLimit is requests per minute per client; 0 means 120.
	RateLimit int
	// LoginLimit is login attempts per 10 minutes per client; 0 means 5.
	LoginLimit int
	// Health, when set, backs /healthz.
	Health func() error
}

// NewApp builds the fiber app with the middleware chain and every route.
func NewApp(d *Deps, opts Options) *fiber.App {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}
	if opts.LoginLimit <= 0 {
		opts.LoginLimit = 5
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    MaxBodySize,
		ErrorHandler: errorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	if opts.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowCredentials: !strings.Contains(opts.CORSOrigins, "*"),
			AllowHeaders:     "Origin, Content-Type, Accept, " + CSRFHeader,
		}))
	}
	app.Use(LoadUser(d.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        opts.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), media.URLPrefix)
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(Envelope{Error: "Too many requests, retry soon"})
		},
	}))
	if opts.CSRF {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "header:" + CSRFHeader,
			CookieName:     CSRFCookie,
			CookieSameSite: "Lax",
			CookieSecure:   opts.CookieSecure,
			ContextKey:     "csrf",
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
				return c.Status(fiber.StatusForbidden).JSON(Envelope{Error: "Security check failed. Please refresh and try again."})
			},
		}))
	}

	// ---------- Static media ----------
	app.Get("/media/*", d.UploadHandler.Serve)

	// ---------- Public API ----------
	api := app.Group("/api")

	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        opts.LoginLimit,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(Envelope{Error: "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	api.Post("/auth/logout", d.AuthHandler.Logout)
	api.Get("/auth/session", d.AuthHandler.Session)
	api.Get("/auth/csrf", d.AuthHandler.CSRF)

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/categories/:slug", d.CategoryHandler.BySlug)
	api.Post("/orders", d.OrderHandler.Place)
	api.Get("/orders/:id", d.OrderHandler.View)
	api.Get("/tips", d.TipHandler.List)
	api.Get("/tips/:slug", d.TipHandler.Read)
	api.Get("/testimonials", d.TestimonialHandler.List)
	api.Get("/settings", d.SettingsHandler.Get)
	api.Post("/cart/quote", d.CartHandler.Quote)
	api.Post("/checkout/whatsapp", d.CartHandler.WhatsApp)

	// ---------- Admin API ----------
	guard := RequireAdmin(d.Auth)

	api.Post("/products", guard, d.ProductHandler.Create)
	api.Put("/products/:id", guard, d.ProductHandler.Update)
	api.Delete("/products/:id", guard, d.ProductHandler.Delete)
	api.Post("/upload", guard, d.UploadHandler.Upload)
	api.Delete("/upload", guard, d.UploadHandler.Delete)

	admin := api.Group("/admin", guard)
	admin.Get("/products/export", d.ProductHandler.Export)

	admin.Get("/categories", d.CategoryHandler.AdminList)
	admin.Post("/categories", d.CategoryHandler.Create)
	admin.Get("/categories/:id", d.CategoryHandler.Get)
	admin.Put("/categories/:id", d.CategoryHandler.Update)
	admin.Delete("/categories/:id", d.CategoryHandler.Delete)

	admin.Get("/orders", d.OrderHandler.AdminList)
	admin.Get("/orders/:id", d.OrderHandler.View)
	admin.Put("/orders/:id", d.OrderHandler.Update)
	admin.Post("/orders/:id/cancel", d.OrderHandler.Cancel)
	admin.Get("/customers", d.AdminHandler.Customers)
	admin.Get("/stats", d.AdminHandler.Stats)

	admin.Get("/tips", d.TipHandler.AdminList)
	admin.Post("/tips", d.TipHandler.Create)
	admin.Get("/tips/:id", d.TipHandler.Get)
	admin.Put("/tips/:id", d.TipHandler.Update)
	admin.Delete("/tips/:id", d.TipHandler.Delete)

	admin.Get("/testimonials", d.TestimonialHandler.List)
	admin.Post("/testimonials", d.TestimonialHandler.Create)
	admin.Get("/testimonials/:id", d.TestimonialHandler.Get)
	admin.Put("/testimonials/:id", d.TestimonialHandler.Update)
	admin.Delete("/testimonials/:id", d.TestimonialHandler.Delete)

	admin.Get("/settings", d.SettingsHandler.Get)
	admin.Put("/settings", d.SettingsHandler.Update)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if opts.Health != nil {
			if err := opts.Health(); err != nil {
				applog.Error(c, "health.fail", err, nil)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
			}
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(Envelope{Error: "Route not found"})
	})

	return app
}

// errorHandler catches anything a handler returned instead of answering
// itself. Internal details never reach the client.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = fe.Message
	}
	applog.Error(c, "server.error", err, map[string]any{"status": code})
	return c.Status(code).JSON(Envelope{Error: msg})
}
