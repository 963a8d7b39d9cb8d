package services_test

import (
	"context"
	"testing"

	"github.com/BookCnk/sit-football-club/internal/repositories"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemoItems(t *testing.T) {
	repo := repositories.NewMockShopItemRepository()
	service := services.NewShopItemService(repo)
	ctx := context.Background()

	n, err := service.SeedDemoItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(services.DemoItems()), n)

	// A second run leaves the catalogue alone.
	n, err = service.SeedDemoItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	items, err := service.ListShopItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(services.DemoItems()))
	for _, item := range items {
		assert.NotEmpty(t, item.Images.URLs(), item.Name)
	}
}
