package apiclient

import (
	"context"
	"fmt"

	"github.com/BookCnk/sit-football-club/internal/models"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ShopItemInput is the body of CreateShopItem.
type ShopItemInput = services.ShopItemInput

// ListShopItems returns the catalogue, newest first.
func (c *Client) ListShopItems(ctx context.Context) ([]models.ShopItem, error) {
	var items []models.ShopItem
	if err := c.query(ctx, "/api/shop-items", []string{TagShopItems}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListShopItemViews returns the catalogue in display form.
func (c *Client) ListShopItemViews(ctx context.Context) ([]models.ShopItemView, error) {
	var views []models.ShopItemView
	if err := c.query(ctx, "/api/shop-items?view=display", []string{TagShopItems}, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetShopItem returns one item.
func (c *Client) GetShopItem(ctx context.Context, id uint) (*models.ShopItem, error) {
	var item models.ShopItem
	if err := c.query(ctx, fmt.Sprintf("/api/shop-items/%d", id), []string{TagShopItems, TagShopItem(id)}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateShopItem adds an item. Admin only.
func (c *Client) CreateShopItem(ctx context.Context, input ShopItemInput) (*models.ShopItem, error) {
	var item models.ShopItem
	if err := c.call(ctx, request{method: fiber.MethodPost, path: "/api/shop-items", jsonBody: input}, &item); err != nil {
		return nil, err
	}
	c.Invalidate(TagShopItems)
	return &item, nil
}

// UpdateShopItem changes the fields present in patch. Admin only.
func (c *Client) UpdateShopItem(ctx context.Context, id uint, patch map[string]any) (*models.ShopItem, error) {
	var item models.ShopItem
	if err := c.call(ctx, request{method: fiber.MethodPatch, path: fmt.Sprintf("/api/shop-items/%d", id), jsonBody: patch}, &item); err != nil {
		return nil, err
	}
	c.Invalidate(TagShopItems, TagShopItem(id))
	return &item, nil
}

// DeleteShopItem removes an item. Admin only.
func (c *Client) DeleteShopItem(ctx context.Context, id uint) (*Message, error) {
	var out Message
	if err := c.call(ctx, request{method: fiber.MethodDelete, path: fmt.Sprintf("/api/shop-items/%d", id)}, &out); err != nil {
		return nil, err
	}
	c.Invalidate(TagShopItems, TagShopItem(id))
	return &out, nil
}
