// Package log writes one JSON object per line through the standard logger.
//
// Actions are dotted names grouped by who acts: "auth.*" for sign-in,
// "access.denied.*" and "*.block" for refused requests, "order.placed*" for
// storefront checkouts and "admin.<entity>.<verb>" for catalog, content and
// order changes made from the dashboard.
package log

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"nyumba/internal/domain"
)

const (
	levelInfo  = "info"
	levelAudit = "audit"
	levelWarn  = "warn"
	levelError = "error"
)

type entry struct {
	TS     string         `json:"ts"`
	Level  string         `json:"level"`
	ReqID  string         `json:"req_id,omitempty"`
	IP     string         `json:"ip,omitempty"`
	Method string         `json:"method,omitempty"`
	Path   string         `json:"path,omitempty"`
	UserID string         `json:"user_id,omitempty"`
	Role   string         `json:"role,omitempty"`
	Action string         `json:"action,omitempty"`
	Status int            `json:"status,omitempty"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// newEntry stamps the request context: id, client, route, status so far and
// the signed-in dashboard user.
func newEntry(level string, c *fiber.Ctx, action string) entry {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action}
	if c == nil {
		return e
	}
	e.IP = c.IP()
	e.Method = c.Method()
	e.Path = c.Path()
	e.Status = c.Response().StatusCode()
	if rid, ok := c.Locals("requestid").(string); ok {
		e.ReqID = rid
	}
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		e.UserID = u.ID
		e.Role = u.Role
	}
	return e
}

func emit(e entry) {
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := newEntry(level, c, action)
	e.Fields = fields
	if err != nil {
		e.Err = err.Error()
	}
	emit(e)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { write(levelInfo, c, action, nil, fields) }

// Audit records a dashboard mutation.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(levelAudit, c, action, nil, fields)
}

// Security records a refused or suspicious request.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(levelWarn, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(levelError, c, action, err, fields)
}

// Order records an order event with its number, state and money. Admin
// actions are audited, storefront checkouts are info.
func Order(c *fiber.Ctx, action string, o *domain.Order) {
	level := levelInfo
	if strings.HasPrefix(action, "admin.") {
		level = levelAudit
	}
	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	write(level, c, action, nil, map[string]any{
		"order_id":       o.ID,
		"order_number":   o.OrderNumber,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
		"units":          units,
		"total":          o.Total,
	})
}
