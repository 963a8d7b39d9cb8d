package repositories

import (
	"context"
	"math"

	"github.com/BookCnk/sit-football-club/internal/models"
)

// OrderFilter selects one page of shop orders.
type OrderFilter struct {
	Page     int
	PageSize int
	Status   models.OrderStatus // empty matches every status
	Search   string
}

// Offset is the number of rows skipped before the page starts. It saturates
// at math.MaxInt for pages too far out to address.
func (f OrderFilter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

// ShopOrderRepository defines the interface for shop order data access.
type ShopOrderRepository interface {
	// List returns one page of matching orders and the total number of matches.
	List(ctx context.Context, filter OrderFilter) ([]models.ShopOrder, int64, error)
	GetByID(ctx context.Context, id uint) (*models.ShopOrder, error)
	Create(ctx context.Context, order *models.ShopOrder) error
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.ShopOrder, error)
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}
