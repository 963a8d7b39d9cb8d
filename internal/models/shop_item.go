package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fallback copy shown when an item leaves the optional text fields empty.
const (
	DefaultSubtitle = "Official Merchandise"
	DefaultPayment  = "Contact club admin for payment details."
	DefaultShipping = "Contact club admin for shipping details."
)

// ShopItem is a piece of club merchandise listed in the shop.
type ShopItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(200);not null"`
	Subtitle    *string         `json:"subtitle"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Badge       *string         `json:"badge" gorm:"type:varchar(50)"`
	Images      Images          `json:"images"`
	Sizes       Sizes           `json:"sizes"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Payment     *string         `json:"payment" gorm:"type:text"`
	Shipping    *string         `json:"shipping" gorm:"type:text"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ShopItemSummary is the slice of a ShopItem embedded in order listings.
type ShopItemSummary struct {
	ID       uint            `json:"id" gorm:"primaryKey"`
	Name     string          `json:"name" gorm:"type:varchar(200);not null"`
	Subtitle *string         `json:"subtitle"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

// TableName maps the summary onto the shop_items table.
func (ShopItemSummary) TableName() string {
	return "shop_items"
}

// ShopItemView is the display projection of a ShopItem. Every field is
// already normalized, so catalogue, detail and cart views render the same
// thing.
type ShopItemView struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Subtitle     string          `json:"subtitle"`
	Price        decimal.Decimal `json:"price"`
	Badge        *string         `json:"badge"`
	Images       []string        `json:"images"`
	PrimaryImage string          `json:"primaryImage"`
	Sizes        []string        `json:"sizes"`
	Description  string          `json:"description"`
	Payment      string          `json:"payment"`
	Shipping     string          `json:"shipping"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// View builds the display projection of the item.
func (item *ShopItem) View() ShopItemView {
	images := item.Images.Display()
	var sizes []string
	if item.Sizes.Declared() {
		sizes = item.Sizes.Values()
	}
	return ShopItemView{
		ID:           item.ID,
		Name:         item.Name,
		Subtitle:     textOr(item.Subtitle, DefaultSubtitle),
		Price:        item.Price,
		Badge:        trimmedOrNil(item.Badge),
		Images:       images,
		PrimaryImage: images[0],
		Sizes:        sizes,
		Description:  item.Description,
		Payment:      textOr(item.Payment, DefaultPayment),
		Shipping:     textOr(item.Shipping, DefaultShipping),
		CreatedAt:    item.CreatedAt,
	}
}

// AcceptsSize reports whether size is a valid selection for the item. Items
// without declared sizes accept anything, including no size at all.
func (item *ShopItem) AcceptsSize(size string) bool {
	if !item.Sizes.Declared() {
		return true
	}
	size = strings.TrimSpace(size)
	for _, s := range item.Sizes.Values() {
		if s == size {
			return true
		}
	}
	return false
}

func textOr(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return *value
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
