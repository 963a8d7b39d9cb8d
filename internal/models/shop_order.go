package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the review state of a shop order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusVerified  OrderStatus = "verified"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status in review order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusVerified,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ParseOrderStatus trims and lowercases s and checks it against the fixed set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid order status: %q", s)
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ShopOrder is a purchase request for one ShopItem, backed by an uploaded
// payment slip.
type ShopOrder struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	ShopItemID   uint             `json:"shopItemId" gorm:"not null;index"`
	ShopItem     *ShopItemSummary `json:"shopItem,omitempty" gorm:"foreignKey:ShopItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	ContactPhone string           `json:"contactPhone" gorm:"type:varchar(50);not null"`
	ContactEmail string           `json:"contactEmail" gorm:"type:varchar(255);not null"`
	SelectedSize *string          `json:"selectedSize" gorm:"type:varchar(20)"`
	ScreenName   *string          `json:"screenName" gorm:"type:varchar(100)"`
	ScreenNumber *string          `json:"screenNumber" gorm:"type:varchar(10)"`
	SlipImageURL string           `json:"slipImageUrl" gorm:"type:text;not null"`
	SlipFilePath string           `json:"slipFilePath" gorm:"type:text;not null"`
	Status       OrderStatus      `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// OrderReceipt is returned to the buyer once an order has been stored.
type OrderReceipt struct {
	ID        uint        `json:"id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Receipt summarises the order for the buyer.
func (o *ShopOrder) Receipt() OrderReceipt {
	return OrderReceipt{ID: o.ID, Status: o.Status, CreatedAt: o.CreatedAt}
}
