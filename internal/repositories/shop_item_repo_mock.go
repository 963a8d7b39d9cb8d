package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/BookCnk/sit-football-club/internal/models"

	"github.com/shopspring/decimal"
)

// MockShopItemRepository is an in-memory implementation of ShopItemRepository.
type MockShopItemRepository struct {
	items  map[uint]models.ShopItem
	nextID uint
	mu     sync.RWMutex
}

// NewMockShopItemRepository creates a new instance of MockShopItemRepository.
func NewMockShopItemRepository() *MockShopItemRepository {
	return &MockShopItemRepository{
		items:  make(map[uint]models.ShopItem),
		nextID: 1,
	}
}

// List returns all items, newest first.
func (r *MockShopItemRepository) List(_ context.Context) ([]models.ShopItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.ShopItem, 0, len(r.items))
	for _, item := range r.items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

// GetByID returns an item by its ID.
func (r *MockShopItemRepository) GetByID(_ context.Context, id uint) (*models.ShopItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("shop item %d: %w", id, ErrRecordNotFound)
	}
	return &item, nil
}

// Create adds a new item.
func (r *MockShopItemRepository) Create(_ context.Context, item *models.ShopItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == 0 {
		item.ID = r.nextID
	}
	if item.ID >= r.nextID {
		r.nextID = item.ID + 1
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.items[item.ID] = *item
	return nil
}

// Update applies the known columns of fields to an existing item.
func (r *MockShopItemRepository) Update(_ context.Context, id uint, fields map[string]any) (*models.ShopItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("shop item %d: %w", id, ErrRecordNotFound)
	}
	for column, value := range fields {
		switch column {
		case "name":
			item.Name = value.(string)
		case "subtitle":
			item.Subtitle = value.(*string)
		case "price":
			item.Price = value.(decimal.Decimal)
		case "badge":
			item.Badge = value.(*string)
		case "images":
			item.Images = value.(models.Images)
		case "sizes":
			item.Sizes = value.(models.Sizes)
		case "description":
			item.Description = value.(string)
		case "payment":
			item.Payment = value.(*string)
		case "shipping":
			item.Shipping = value.(*string)
		default:
			return nil, fmt.Errorf("unknown shop item column %q", column)
		}
	}
	r.items[id] = item
	return &item, nil
}

// Delete removes an item by its ID.
func (r *MockShopItemRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("shop item %d: %w", id, ErrRecordNotFound)
	}
	delete(r.items, id)
	return nil
}

// Count returns the number of stored items.
func (r *MockShopItemRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
