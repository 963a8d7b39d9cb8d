package repositories

import (
	"context"

	"github.com/BookCnk/sit-football-club/internal/models"
)

// ShopItemRepository defines the interface for shop item data access.
type ShopItemRepository interface {
	List(ctx context.Context) ([]models.ShopItem, error)
	GetByID(ctx context.Context, id uint) (*models.ShopItem, error)
	Create(ctx context.Context, item *models.ShopItem) error
	// Update applies a partial update keyed by column name.
	Update(ctx context.Context, id uint, fields map[string]any) (*models.ShopItem, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}
