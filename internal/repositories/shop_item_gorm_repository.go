package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/BookCnk/sit-football-club/internal/models"

	"gorm.io/gorm"
)

// GORMShopItemRepository is a GORM implementation of ShopItemRepository.
type GORMShopItemRepository struct {
	db *gorm.DB
}

// NewGORMShopItemRepository creates a new instance of GORMShopItemRepository.
func NewGORMShopItemRepository(db *gorm.DB) *GORMShopItemRepository {
	return &GORMShopItemRepository{
		db: db,
	}
}

// List returns every shop item, newest first.
func (r *GORMShopItemRepository) List(ctx context.Context) ([]models.ShopItem, error) {
	items := []models.ShopItem{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single shop item.
func (r *GORMShopItemRepository) GetByID(ctx context.Context, id uint) (*models.ShopItem, error) {
	var item models.ShopItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shop item %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get shop item %d: %w", id, err)
	}
	return &item, nil
}

// Create inserts a new shop item.
func (r *GORMShopItemRepository) Create(ctx context.Context, item *models.ShopItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create shop item: %w", err)
	}
	return nil
}

// Update writes the given columns and returns the stored row.
func (r *GORMShopItemRepository) Update(ctx context.Context, id uint, fields map[string]any) (*models.ShopItem, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.ShopItem{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update shop item %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("shop item %d: %w", id, ErrRecordNotFound)
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a shop item. Items that orders still reference are kept
// and reported as ErrInUse.
func (r *GORMShopItemRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.ShopOrder{}).Where("shop_item_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to check orders of shop item %d: %w", id, err)
		}
		if refs > 0 {
			return fmt.Errorf("shop item %d has %d orders: %w", id, refs, ErrInUse)
		}

		res := tx.Delete(&models.ShopItem{}, id)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
				return fmt.Errorf("shop item %d: %w", id, ErrInUse)
			}
			return fmt.Errorf("failed to delete shop item %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("shop item %d: %w", id, ErrRecordNotFound)
		}
		return nil
	})
}

// Count returns the number of shop items.
func (r *GORMShopItemRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.ShopItem{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count shop items: %w", err)
	}
	return n, nil
}
