package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/log"
	"nyumba/internal/services"
	"nyumba/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	p := params(c)
	if raw, present := p["search"]; present && raw != "" {
		// matched literally either way; unusual input is only flagged
		q, valid := validate.Q(raw)
		if !valid {
			log.Security(c, "validation.suspicious", map[string]any{"field": "search"})
		}
		p["search"] = q
	}
	items, meta, err := h.Catalog.ListProducts(c.UserContext(), p)
	if err != nil {
		return fail(c, err)
	}
	return listing(c, "products", items, meta)
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Catalog.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.create", map[string]any{"product_id": p.ID})
	return ok(c, fiber.StatusCreated, p)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.update", map[string]any{"product_id": p.ID})
	return ok(c, fiber.StatusOK, p)
}

// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	return okMessage(c, "Product deleted successfully")
}

// GET /api/admin/products/export
func (h *ProductHandler) Export(c *fiber.Ctx) error {
	b, err := h.Catalog.ExportProducts(c.UserContext(), params(c))
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.product.export", map[string]any{"bytes": len(b)})
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	c.Set(fiber.HeaderContentType, services.XLSXContentType)
	return c.Status(fiber.StatusOK).Send(b)
}
