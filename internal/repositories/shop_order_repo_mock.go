package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BookCnk/sit-football-club/internal/models"
)

// MockShopOrderRepository is an in-memory implementation of ShopOrderRepository.
// Item summaries and item-name search are resolved through items when set.
type MockShopOrderRepository struct {
	orders map[uint]models.ShopOrder
	items  ShopItemRepository
	nextID uint
	mu     sync.RWMutex
}

// NewMockShopOrderRepository creates a new instance of MockShopOrderRepository.
func NewMockShopOrderRepository(items ShopItemRepository) *MockShopOrderRepository {
	return &MockShopOrderRepository{
		orders: make(map[uint]models.ShopOrder),
		items:  items,
		nextID: 1,
	}
}

func (r *MockShopOrderRepository) withItem(ctx context.Context, order models.ShopOrder) models.ShopOrder {
	if r.items == nil {
		return order
	}
	if item, err := r.items.GetByID(ctx, order.ShopItemID); err == nil {
		order.ShopItem = &models.ShopItemSummary{
			ID:       item.ID,
			Name:     item.Name,
			Subtitle: item.Subtitle,
			Price:    item.Price,
		}
	}
	return order
}

func (r *MockShopOrderRepository) matches(order models.ShopOrder, filter OrderFilter) bool {
	if filter.Status != "" && order.Status != filter.Status {
		return false
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return true
	}
	fields := []string{order.ContactPhone, order.ContactEmail}
	if order.ScreenName != nil {
		fields = append(fields, *order.ScreenName)
	}
	if order.ShopItem != nil {
		fields = append(fields, order.ShopItem.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// List returns one page of matching orders, newest first.
func (r *MockShopOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.ShopOrder, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.ShopOrder{}
	for _, order := range r.orders {
		order = r.withItem(ctx, order)
		if r.matches(order, filter) {
			matched = append(matched, order)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.PageSize > 0 && start+filter.PageSize < end {
		end = start + filter.PageSize
	}
	return matched[start:end], total, nil
}

// GetByID returns an order by its ID.
func (r *MockShopOrderRepository) GetByID(ctx context.Context, id uint) (*models.ShopOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("shop order %d: %w", id, ErrRecordNotFound)
	}
	order = r.withItem(ctx, order)
	return &order, nil
}

// Create adds a new order.
func (r *MockShopOrderRepository) Create(_ context.Context, order *models.ShopOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == 0 {
		order.ID = r.nextID
	}
	if order.ID >= r.nextID {
		r.nextID = order.ID + 1
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockShopOrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.ShopOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("shop order %d: %w", id, ErrRecordNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	order = r.withItem(ctx, order)
	return &order, nil
}

// Delete removes an order.
func (r *MockShopOrderRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("shop order %d: %w", id, ErrRecordNotFound)
	}
	delete(r.orders, id)
	return nil
}

// CountByStatus returns the number of orders per status.
func (r *MockShopOrderRepository) CountByStatus(_ context.Context) ([]StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := map[models.OrderStatus]int64{}
	for _, order := range r.orders {
		totals[order.Status]++
	}
	counts := []StatusCount{}
	for _, status := range models.OrderStatuses {
		if n := totals[status]; n > 0 {
			counts = append(counts, StatusCount{Status: status, Count: n})
		}
	}
	return counts, nil
}

// Len returns the number of stored orders.
func (r *MockShopOrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
