package repositories_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/BookCnk/sit-football-club/internal/models"
	"github.com/BookCnk/sit-football-club/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// newTestDB opens a private in-memory SQLite database with foreign keys on.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repositories.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name))
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createItem(t *testing.T, repo repositories.ShopItemRepository, name string, createdAt time.Time) *models.ShopItem {
	t.Helper()
	item := &models.ShopItem{
		Name:        name,
		Price:       decimal.RequireFromString("590.00"),
		Images:      models.NewImages("/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")) + ".png"),
		Sizes:       models.NewSizes("S", "M", "L"),
		Description: name + " description",
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestGORMShopItemRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMShopItemRepository(newTestDB(t))
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	older := createItem(t, repo, "Away Jersey", base)
	newer := createItem(t, repo, "Home Jersey", base.Add(time.Hour))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/away-jersey.png"}, got.Images.URLs())
	assert.Equal(t, []string{"S", "M", "L"}, got.Sizes.Values())
	assert.True(t, decimal.RequireFromString("590").Equal(got.Price))

	badge := "SALE"
	updated, err := repo.Update(ctx, older.ID, map[string]any{
		"price": decimal.RequireFromString("450.50"),
		"badge": &badge,
		"sizes": models.Sizes{},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("450.5").Equal(updated.Price))
	require.NotNil(t, updated.Badge)
	assert.Equal(t, "SALE", *updated.Badge)
	assert.False(t, updated.Sizes.Declared())
	assert.Equal(t, "Away Jersey", updated.Name)

	_, err = repo.Update(ctx, 999, map[string]any{"name": "Ghost"})
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, repo.Delete(ctx, newer.ID))
	assert.ErrorIs(t, repo.Delete(ctx, newer.ID), repositories.ErrRecordNotFound)
}

func TestGORMShopItemRepositoryKeepsSubmittedImageLayout(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMShopItemRepository(newTestDB(t))

	var images models.Images
	require.NoError(t, images.UnmarshalJSON([]byte(`[{"url":"/a.jpg"},{"url":"javascript:alert(1)"},"https://cdn.example.com/b.jpg"]`)))
	item := &models.ShopItem{Name: "Scarf", Price: decimal.NewFromInt(250), Images: images, Description: "Knitted"}
	require.NoError(t, repo.Create(ctx, item))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImageShapeMixed, got.Images.Shape())
	assert.Equal(t, []string{"/a.jpg", "https://cdn.example.com/b.jpg"}, got.Images.URLs())
	assert.True(t, got.Sizes.IsNull())
}

func TestGORMShopItemRepositoryDeleteReferencedItem(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	items := repositories.NewGORMShopItemRepository(db)
	orders := repositories.NewGORMShopOrderRepository(db)

	item := createItem(t, items, "Home Jersey", time.Now())
	require.NoError(t, orders.Create(ctx, newOrder(item.ID, models.OrderStatusPending, time.Now())))

	err := items.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, repositories.ErrInUse)

	_, err = items.GetByID(ctx, item.ID)
	assert.NoError(t, err)
}

func TestGORMShopItemRepositoryForeignKeysWithoutDSNOption(t *testing.T) {
	ctx := context.Background()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repositories.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	items := repositories.NewGORMShopItemRepository(db)
	orders := repositories.NewGORMShopOrderRepository(db)

	item := createItem(t, items, "Away Jersey", time.Now())
	require.NoError(t, orders.Create(ctx, newOrder(item.ID, models.OrderStatusPending, time.Now())))

	err = items.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, repositories.ErrInUse)
	_, err = items.GetByID(ctx, item.ID)
	assert.NoError(t, err)

	// Orders for unknown items are refused by the database itself.
	assert.Error(t, orders.Create(ctx, newOrder(item.ID+100, models.OrderStatusPending, time.Now())))

	unused := createItem(t, items, "Scarf", time.Now())
	assert.NoError(t, items.Delete(ctx, unused.ID))
	assert.ErrorIs(t, items.Delete(ctx, unused.ID), repositories.ErrRecordNotFound)
}

func newOrder(itemID uint, status models.OrderStatus, createdAt time.Time) *models.ShopOrder {
	return &models.ShopOrder{
		ShopItemID:   itemID,
		ContactPhone: "0812345678",
		ContactEmail: "fan@example.com",
		SlipImageURL: "https://storage.example.com/slip.png",
		SlipFilePath: "shop-orders/1/slip.png",
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func TestGORMShopOrderRepositoryListSecondPage(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	items := repositories.NewGORMShopItemRepository(db)
	orders := repositories.NewGORMShopOrderRepository(db)

	item := createItem(t, items, "Home Jersey", time.Now())
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	ids := make([]uint, 25)
	for i := range ids {
		order := newOrder(item.ID, models.OrderStatusVerified, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, orders.Create(ctx, order))
		ids[i] = order.ID
	}
	require.NoError(t, orders.Create(ctx, newOrder(item.ID, models.OrderStatusPending, base.Add(time.Hour))))

	page, total, err := orders.List(ctx, repositories.OrderFilter{Page: 2, PageSize: 10, Status: models.OrderStatusVerified})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, page, 10)
	for i, order := range page {
		// newest first: page 2 holds the 11th to 20th newest
		assert.Equal(t, ids[24-10-i], order.ID)
		assert.Equal(t, models.OrderStatusVerified, order.Status)
		require.NotNil(t, order.ShopItem)
		assert.Equal(t, "Home Jersey", order.ShopItem.Name)
	}

	page, total, err = orders.List(ctx, repositories.OrderFilter{Page: 4, PageSize: 10, Status: models.OrderStatusVerified})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Empty(t, page)

	page, total, err = orders.List(ctx, repositories.OrderFilter{Page: math.MaxInt, PageSize: 10, Status: models.OrderStatusVerified})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Empty(t, page)
}

func TestOrderFilterOffset(t *testing.T) {
	tests := []struct {
		name   string
		filter repositories.OrderFilter
		want   int
	}{
		{"first page", repositories.OrderFilter{Page: 1, PageSize: 10}, 0},
		{"third page", repositories.OrderFilter{Page: 3, PageSize: 10}, 20},
		{"zero page", repositories.OrderFilter{Page: 0, PageSize: 10}, 0},
		{"zero size", repositories.OrderFilter{Page: 5, PageSize: 0}, 0},
		{"largest page", repositories.OrderFilter{Page: math.MaxInt, PageSize: 2}, math.MaxInt},
		{"just past the limit", repositories.OrderFilter{Page: math.MaxInt/50 + 2, PageSize: 50}, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Offset())
		})
	}
}

func TestGORMShopOrderRepositorySearch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	items := repositories.NewGORMShopItemRepository(db)
	orders := repositories.NewGORMShopOrderRepository(db)

	jersey := createItem(t, items, "Home Jersey", time.Now())
	scarf := createItem(t, items, "Winter Scarf", time.Now())

	screen := "SOMCHAI 100%"
	a := newOrder(jersey.ID, models.OrderStatusPending, time.Now())
	a.ContactEmail = "Alice@Example.com"
	a.ScreenName = &screen
	b := newOrder(scarf.ID, models.OrderStatusVerified, time.Now())
	b.ContactPhone = "0899999999"
	require.NoError(t, orders.Create(ctx, a))
	require.NoError(t, orders.Create(ctx, b))

	search := func(term string, status models.OrderStatus) []uint {
		list, total, err := orders.List(ctx, repositories.OrderFilter{Page: 1, PageSize: 10, Search: term, Status: status})
		require.NoError(t, err)
		assert.Equal(t, int64(len(list)), total)
		ids := []uint{}
		for _, o := range list {
			ids = append(ids, o.ID)
		}
		return ids
	}

	assert.Equal(t, []uint{a.ID}, search("alice@", ""))
	assert.Equal(t, []uint{b.ID}, search("08999", ""))
	assert.Equal(t, []uint{b.ID}, search("SCARF", ""))
	assert.Equal(t, []uint{a.ID}, search("somchai", ""))
	assert.Equal(t, []uint{a.ID}, search("100%", ""))
	assert.Empty(t, search("x%", ""))
	assert.Empty(t, search("i_1", ""))
	assert.Empty(t, search("scarf", models.OrderStatusPending))
	assert.Len(t, search("", ""), 2)
}

func TestGORMShopOrderRepositoryStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	items := repositories.NewGORMShopItemRepository(db)
	orders := repositories.NewGORMShopOrderRepository(db)

	item := createItem(t, items, "Home Jersey", time.Now())
	order := newOrder(item.ID, "", time.Now())
	require.NoError(t, orders.Create(ctx, order))
	assert.Equal(t, models.OrderStatusPending, order.Status)

	updated, err := orders.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
	require.NotNil(t, updated.ShopItem)

	_, err = orders.UpdateStatus(ctx, 999, models.OrderStatusCompleted)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	require.NoError(t, orders.Create(ctx, newOrder(item.ID, models.OrderStatusPending, time.Now())))
	counts, err := orders.CountByStatus(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []repositories.StatusCount{
		{Status: models.OrderStatusCompleted, Count: 1},
		{Status: models.OrderStatusPending, Count: 1},
	}, counts)

	require.NoError(t, orders.Delete(ctx, order.ID))
	_, err = orders.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
	assert.ErrorIs(t, orders.Delete(ctx, order.ID), repositories.ErrRecordNotFound)
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	user := &models.User{Email: "admin@sit.ac.th", Password: "hash", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := repo.GetByEmail(ctx, "admin@sit.ac.th")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.IsAdmin())

	got.Role = models.RoleUser
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)

	_, err = repo.GetByEmail(ctx, "nobody@sit.ac.th")
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)

	assert.Error(t, repo.Create(ctx, &models.User{Email: "admin@sit.ac.th", Password: "x"}))
}
