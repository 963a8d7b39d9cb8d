package models_test

import (
	"testing"

	"github.com/BookCnk/sit-football-club/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShopItemViewAppliesFallbacks(t *testing.T) {
	badge := "  "
	item := &models.ShopItem{
		ID:          3,
		Name:        "Scarf",
		Price:       decimal.RequireFromString("250.00"),
		Badge:       &badge,
		Description: "Knitted",
	}

	view := item.View()
	assert.Equal(t, models.DefaultSubtitle, view.Subtitle)
	assert.Equal(t, models.DefaultPayment, view.Payment)
	assert.Equal(t, models.DefaultShipping, view.Shipping)
	assert.Nil(t, view.Badge)
	assert.Equal(t, []string{models.PlaceholderImage}, view.Images)
	assert.Equal(t, models.PlaceholderImage, view.PrimaryImage)
	assert.Empty(t, view.Sizes)
}

func TestShopItemViewNormalizesMedia(t *testing.T) {
	subtitle := "Season 2025"
	item := &models.ShopItem{
		Name:     "Home Jersey",
		Subtitle: &subtitle,
		Images:   models.NewImages("a.jpg", "/front.png", "https://cdn.example.com/back.png"),
		Sizes:    models.NewSizes("S", " M ", ""),
	}

	view := item.View()
	assert.Equal(t, "Season 2025", view.Subtitle)
	assert.Equal(t, []string{"/front.png", "https://cdn.example.com/back.png"}, view.Images)
	assert.Equal(t, "/front.png", view.PrimaryImage)
	assert.Equal(t, []string{"S", "M"}, view.Sizes)
}

func TestShopItemAcceptsSize(t *testing.T) {
	sized := &models.ShopItem{Sizes: models.NewSizes("S", "M", "L")}
	assert.True(t, sized.AcceptsSize("M"))
	assert.True(t, sized.AcceptsSize(" L "))
	assert.False(t, sized.AcceptsSize("XL"))
	assert.False(t, sized.AcceptsSize(""))

	unsized := &models.ShopItem{}
	assert.True(t, unsized.AcceptsSize(""))
	assert.True(t, unsized.AcceptsSize("anything"))
}

func TestParseOrderStatus(t *testing.T) {
	status, err := models.ParseOrderStatus("  Verified ")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusVerified, status)

	for _, bad := range []string{"", "shipped", "all"} {
		_, err := models.ParseOrderStatus(bad)
		assert.Error(t, err, bad)
	}
}
