package handlers

import (
	"github.com/BookCnk/sit-football-club/internal/middleware"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the dashboard endpoints under /api/admin. The router
// it is registered on must already run the admin gate.
type AdminHandler struct {
	orders *services.OrderService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orders *services.OrderService) *AdminHandler {
	return &AdminHandler{orders: orders}
}

// RegisterRoutes registers the admin routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/session", h.HandleSession)
	router.Get("/summary", h.HandleSummary)
}

// HandleSession returns the signed-in admin.
func (h *AdminHandler) HandleSession(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return errorJSON(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    claims.UserID,
			"email": claims.Email,
			"role":  claims.Role,
		},
		"expiresAt": claims.ExpiresAt,
	})
}

// HandleSummary returns the order counts shown in the dashboard header.
func (h *AdminHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.orders.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to load summary.")
	}
	return c.JSON(summary)
}
