package handlers

import (
	"net/url"

	"github.com/BookCnk/sit-football-club/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadsHandler serves slips kept by a storage.MemoryStore, so that the
// public URLs it hands out resolve when the server runs without Supabase.
type UploadsHandler struct {
	store *storage.MemoryStore
}

// NewUploadsHandler creates a new UploadsHandler.
func NewUploadsHandler(store *storage.MemoryStore) *UploadsHandler {
	return &UploadsHandler{store: store}
}

// RegisterRoutes registers GET /uploads/:bucket/*.
func (h *UploadsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/uploads/:bucket/*", h.HandleGetObject)
}

// HandleGetObject writes a stored object with its content type.
func (h *UploadsHandler) HandleGetObject(c *fiber.Ctx) error {
	bucket, err := url.PathUnescape(c.Params("bucket"))
	if err != nil {
		return fiber.ErrBadRequest
	}
	key, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return fiber.ErrBadRequest
	}

	obj, ok := h.store.Get(bucket, key)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "Not found")
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.Send(obj.Data)
}
