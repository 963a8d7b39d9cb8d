package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. Only submission is public.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, admin fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", admin, h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleSubmitOrder)
	orderRoutes.Get("/:id", admin, h.HandleGetOrder)
	orderRoutes.Patch("/:id", admin, h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", admin, h.HandleDeleteOrder)
}

// HandleGetOrders returns one page of orders for the admin dashboard.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	page, err := h.service.ListOrders(c.UserContext(), services.OrderListParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", services.DefaultPageSize),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch orders.")
	}
	return c.JSON(page)
}

// HandleGetOrder retrieves a single order.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch order.")
	}
	return c.JSON(order)
}

// HandleSubmitOrder accepts a public multipart order form with its payment
// slip in the slipFile field.
func (h *OrderHandler) HandleSubmitOrder(c *fiber.Ctx) error {
	itemID, err := strconv.Atoi(strings.TrimSpace(c.FormValue("shopItemId")))
	if err != nil {
		itemID = 0
	}
	sub := services.OrderSubmission{
		ShopItemID:   itemID,
		ContactPhone: c.FormValue("contactPhone"),
		ContactEmail: c.FormValue("contactEmail"),
		SelectedSize: c.FormValue("selectedSize"),
		ScreenName:   c.FormValue("screenName"),
		ScreenNumber: c.FormValue("screenNumber"),
	}

	var slip *services.SlipFile
	if fh, err := c.FormFile("slipFile"); err == nil {
		file, err := fh.Open()
		if err != nil {
			return respondError(c, fmt.Errorf("failed to open slip upload: %w", err), "Failed to submit order.")
		}
		defer file.Close()
		slip = &services.SlipFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     file,
		}
	}

	order, err := h.service.SubmitOrder(c.UserContext(), sub, slip)
	if err != nil {
		return respondError(c, err, "Failed to submit order.")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order submitted successfully.",
		"order":   order.Receipt(),
	})
}

// HandleUpdateOrderStatus changes the status of an order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid status value.")
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), id, updateData.Status)
	if err != nil {
		return respondError(c, err, "Failed to update order.")
	}
	return c.JSON(order)
}

// HandleDeleteOrder deletes an order.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.service.DeleteOrder(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete order.")
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Deleted order %d", id)})
}
