package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/apperr"
	applog "nyumba/internal/log"
	"nyumba/internal/query"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func okMessage(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Message: msg})
}

// fail writes err with the status of its kind. Upstream failures are logged
// and carry the underlying cause in message.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	msg, cause := apperr.Message(err)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "request.failed", err, nil)
	}
	return c.Status(status).JSON(Envelope{Success: false, Error: msg, Message: cause})
}

// listing renders {<key>: items, pagination: meta}.
func listing(c *fiber.Ctx, key string, items any, meta query.Meta) error {
	return ok(c, fiber.StatusOK, fiber.Map{key: items, "pagination": meta})
}

// params flattens the query string; the last value of a repeated key wins.
func params(c *fiber.Ctx) query.Params {
	p := query.Params{}
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		p[string(k)] = string(v)
	})
	return p
}

// bind decodes the JSON body into dst.
func bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return apperr.Validation("Request body is required")
	}
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}
