package services

import (
	"context"
	"fmt"
	"log"

	"github.com/BookCnk/sit-football-club/internal/models"

	"github.com/shopspring/decimal"
)

// DemoItems is the merchandise used to populate an empty catalogue.
func DemoItems() []models.ShopItem {
	badge := "NEW"
	subtitle := "2025/26 Season"
	return []models.ShopItem{
		{
			Name:        "SIT FC Home Jersey",
			Subtitle:    &subtitle,
			Price:       decimal.RequireFromString("590.00"),
			Badge:       &badge,
			Images:      models.NewImages("/shop/home-jersey-front.png", "/shop/home-jersey-back.png"),
			Sizes:       models.NewSizes("S", "M", "L", "XL", "2XL"),
			Description: "Official home jersey with optional name and number printing.",
		},
		{
			Name:        "SIT FC Away Jersey",
			Subtitle:    &subtitle,
			Price:       decimal.RequireFromString("590.00"),
			Images:      models.NewImages("/shop/away-jersey-front.png"),
			Sizes:       models.NewSizes("S", "M", "L", "XL", "2XL"),
			Description: "Official away jersey with optional name and number printing.",
		},
		{
			Name:        "Supporter Scarf",
			Price:       decimal.RequireFromString("250.00"),
			Images:      models.NewImages("/shop/scarf.png"),
			Description: "Knitted scarf in club colours.",
		},
	}
}

// SeedDemoItems adds DemoItems when the catalogue is empty and returns how
// many items were created.
func (s *ShopItemService) SeedDemoItems(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count shop items: %w", err)
	}
	if count > 0 {
		log.Printf("Catalogue already has %d items, skipping seed", count)
		return 0, nil
	}

	items := DemoItems()
	for i := range items {
		if err := s.repo.Create(ctx, &items[i]); err != nil {
			return i, fmt.Errorf("failed to seed %s: %w", items[i].Name, err)
		}
		log.Printf("Seeded shop item: %s (ID: %d)", items[i].Name, items[i].ID)
	}
	return len(items), nil
}
