package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/log"
	"nyumba/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	items, meta, err := h.Catalog.ListCategories(c.UserContext(), params(c), true)
	if err != nil {
		return fail(c, err)
	}
	return listing(c, "categories", items, meta)
}

// GET /api/categories/:slug
func (h *CategoryHandler) BySlug(c *fiber.Ctx) error {
	cat, err := h.Catalog.CategoryBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, cat)
}

// GET /api/admin/categories
func (h *CategoryHandler) AdminList(c *fiber.Ctx) error {
	items, meta, err := h.Catalog.ListCategories(c.UserContext(), params(c), false)
	if err != nil {
		return fail(c, err)
	}
	return listing(c, "categories", items, meta)
}

// GET /api/admin/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	cat, err := h.Catalog.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, cat)
}

// POST /api/admin/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.category.create", map[string]any{"category_id": cat.ID, "slug": cat.Slug})
	return ok(c, fiber.StatusCreated, cat)
}

// PUT /api/admin/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	cat, err := h.Catalog.UpdateCategory(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.category.update", map[string]any{"category_id": cat.ID})
	return ok(c, fiber.StatusOK, cat)
}

// DELETE /api/admin/categories/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteCategory(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.category.delete", map[string]any{"category_id": id})
	return okMessage(c, "Category deleted successfully")
}
