package handlers

import (
	"log"
	"strconv"

	"github.com/BookCnk/sit-football-club/internal/models"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ShopItemHandler handles HTTP requests for shop items.
type ShopItemHandler struct {
	service *services.ShopItemService
}

// NewShopItemHandler creates a new ShopItemHandler.
func NewShopItemHandler(service *services.ShopItemService) *ShopItemHandler {
	return &ShopItemHandler{
		service: service,
	}
}

// RegisterRoutes registers the shop item routes. Mutations run behind admin.
func (h *ShopItemHandler) RegisterRoutes(router fiber.Router, admin fiber.Handler) {
	itemRoutes := router.Group("/shop-items")
	itemRoutes.Get("/", h.HandleGetShopItems)
	itemRoutes.Post("/", admin, h.HandleCreateShopItem)
	itemRoutes.Get("/:id", h.HandleGetShopItem)
	itemRoutes.Patch("/:id", admin, h.HandleUpdateShopItem)
	itemRoutes.Delete("/:id", admin, h.HandleDeleteShopItem)
}

func displayView(c *fiber.Ctx) bool {
	return c.Query("view") == "display"
}

// HandleGetShopItems lists the catalogue, newest first. ?view=display
// returns normalized display projections.
func (h *ShopItemHandler) HandleGetShopItems(c *fiber.Ctx) error {
	items, err := h.service.ListShopItems(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch shop items")
	}
	if displayView(c) {
		views := make([]models.ShopItemView, len(items))
		for i := range items {
			views[i] = items[i].View()
		}
		return c.JSON(views)
	}
	return c.JSON(items)
}

// HandleGetShopItem retrieves a single shop item.
func (h *ShopItemHandler) HandleGetShopItem(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	item, err := h.service.GetShopItem(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch item")
	}
	if displayView(c) {
		return c.JSON(item.View())
	}
	return c.JSON(item)
}

// HandleCreateShopItem creates a new shop item.
func (h *ShopItemHandler) HandleCreateShopItem(c *fiber.Ctx) error {
	var input services.ShopItemInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing shop item body: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	item, err := h.service.CreateShopItem(c.UserContext(), input)
	if err != nil {
		return respondError(c, err, "Failed to create shop item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateShopItem applies a partial update.
func (h *ShopItemHandler) HandleUpdateShopItem(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	var patch services.ShopItemPatch
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("Error parsing shop item patch for %d: %v", id, err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	item, err := h.service.UpdateShopItem(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, err, "Failed to update item")
	}
	return c.JSON(item)
}

// HandleDeleteShopItem deletes a shop item.
func (h *ShopItemHandler) HandleDeleteShopItem(c *fiber.Ctx) error {
	id, ok, err := paramID(c)
	if !ok {
		return err
	}
	if err := h.service.DeleteShopItem(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete item")
	}
	return c.JSON(fiber.Map{"message": "Deleted item " + strconv.FormatUint(uint64(id), 10)})
}
