package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BookCnk/sit-football-club/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// GORMShopOrderRepository is a GORM implementation of ShopOrderRepository.
type GORMShopOrderRepository struct {
	db *gorm.DB
}

// NewGORMShopOrderRepository creates a new instance of GORMShopOrderRepository.
func NewGORMShopOrderRepository(db *gorm.DB) *GORMShopOrderRepository {
	return &GORMShopOrderRepository{
		db: db,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filtered builds the shared WHERE clause for the count and page queries.
func (r *GORMShopOrderRepository) filtered(ctx context.Context, filter OrderFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.ShopOrder{})
	if filter.Status != "" {
		q = q.Where("shop_orders.status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		q = q.Joins("LEFT JOIN shop_items ON shop_items.id = shop_orders.shop_item_id").
			Where(`(LOWER(shop_orders.contact_phone) LIKE ? ESCAPE '\'`+
				` OR LOWER(shop_orders.contact_email) LIKE ? ESCAPE '\'`+
				` OR LOWER(COALESCE(shop_orders.screen_name, '')) LIKE ? ESCAPE '\'`+
				` OR LOWER(COALESCE(shop_items.name, '')) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern, pattern)
	}
	return q
}

// List counts and fetches the requested page concurrently.
func (r *GORMShopOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.ShopOrder, int64, error) {
	var (
		total  int64
		orders = []models.ShopOrder{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.filtered(gctx, filter).Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count shop orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := r.filtered(gctx, filter).
			Select("shop_orders.*").
			Preload("ShopItem").
			Order("shop_orders.created_at DESC").
			Order("shop_orders.id DESC").
			Offset(filter.Offset()).
			Limit(filter.PageSize).
			Find(&orders).Error
		if err != nil {
			return fmt.Errorf("failed to list shop orders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetByID retrieves a single order together with its item summary.
func (r *GORMShopOrderRepository) GetByID(ctx context.Context, id uint) (*models.ShopOrder, error) {
	var order models.ShopOrder
	if err := r.db.WithContext(ctx).Preload("ShopItem").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shop order %d: %w", id, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get shop order %d: %w", id, err)
	}
	return &order, nil
}

// Create inserts a new order.
func (r *GORMShopOrderRepository) Create(ctx context.Context, order *models.ShopOrder) error {
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if err := r.db.WithContext(ctx).Omit("ShopItem").Create(order).Error; err != nil {
		return fmt.Errorf("failed to create shop order: %w", err)
	}
	return nil
}

// UpdateStatus changes the status of an order and returns the stored row.
func (r *GORMShopOrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.ShopOrder, error) {
	res := r.db.WithContext(ctx).Model(&models.ShopOrder{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of shop order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("shop order %d: %w", id, ErrRecordNotFound)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order.
func (r *GORMShopOrderRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ShopOrder{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete shop order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shop order %d: %w", id, ErrRecordNotFound)
	}
	return nil
}

// CountByStatus returns the number of orders per status.
func (r *GORMShopOrderRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	counts := []StatusCount{}
	err := r.db.WithContext(ctx).Model(&models.ShopOrder{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count shop orders by status: %w", err)
	}
	return counts, nil
}
