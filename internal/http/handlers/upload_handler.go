package handlers

import (
	"github.com/gofiber/fiber/v2"

	"nyumba/internal/apperr"
	"nyumba/internal/log"
	"nyumba/internal/media"
)

type UploadHandler struct {
	Media *media.Store
}

// POST /api/upload
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, apperr.Validation("No file uploaded"))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, apperr.Upstream("Failed to read upload", err))
	}
	defer f.Close()

	url, err := h.Media.Save(f, fh.Size)
	if err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.media.upload", map[string]any{"url": url, "size": fh.Size})
	return ok(c, fiber.StatusCreated, fiber.Map{"url": url})
}

// DELETE /api/upload?url=
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return fail(c, apperr.Validation("url is required"))
	}
	if err := h.Media.Delete(url); err != nil {
		return fail(c, err)
	}
	log.Audit(c, "admin.media.delete", map[string]any{"url": url})
	return okMessage(c, "File deleted successfully")
}

// GET /media/*
func (h *UploadHandler) Serve(c *fiber.Ctx) error {
	path := c.Params("*")
	full, allowed := h.Media.Resolve(path)
	if !allowed {
		log.Security(c, "media.traversal.block", map[string]any{"path": path})
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(full, true)
}
