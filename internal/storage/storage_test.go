package storage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/BookCnk/sit-football-club/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeExtension(t *testing.T) {
	cases := map[string]string{
		"slip.PNG":       "png",
		"photo.jpeg":     "jpeg",
		"archive.tar.gz": "gz",
		"weird.j-p_g!":   "jpg",
		"noextension.":   "png",
		"":               "png",
		"receipt.%%%":    "png",
		"scan.WebP":      "webp",
	}
	for in, want := range cases {
		assert.Equal(t, want, storage.SafeExtension(in), "input %q", in)
	}
}

func TestSlipKey(t *testing.T) {
	now := time.UnixMilli(1735689600123)
	key := storage.SlipKey(42, now, "Slip.JPG")

	assert.True(t, strings.HasPrefix(key, "shop-orders/42/1735689600123-"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotEqual(t, key, storage.SlipKey(42, now, "Slip.JPG"), "keys must not collide")
}

func TestMemoryStoreUploadAndGet(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore("http://localhost:8080/")

	require.NoError(t, store.EnsurePublicBucket(ctx, "payment-slips"))
	require.NoError(t, store.Upload(ctx, "payment-slips", "shop-orders/1/a.png", "image/png", strings.NewReader("png-bytes"), 9))

	obj, ok := store.Get("payment-slips", "shop-orders/1/a.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte("png-bytes"), obj.Data)
	assert.Equal(t, "http://localhost:8080/uploads/payment-slips/shop-orders/1/a.png", store.PublicURL("payment-slips", "shop-orders/1/a.png"))
}

func TestMemoryStoreRejectsOverwrite(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore("")
	require.NoError(t, store.EnsurePublicBucket(ctx, "b"))
	require.NoError(t, store.Upload(ctx, "b", "k", "image/png", strings.NewReader("1"), 1))

	err := store.Upload(ctx, "b", "k", "image/png", strings.NewReader("2"), 1)
	var stErr *storage.Error
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, 409, stErr.Status)

	obj, _ := store.Get("b", "k")
	assert.Equal(t, []byte("1"), obj.Data)
}

func TestMemoryStoreUploadWithoutBucket(t *testing.T) {
	store := storage.NewMemoryStore("")
	err := store.Upload(context.Background(), "missing", "k", "image/png", strings.NewReader("x"), 1)
	assert.Error(t, err)
}

func TestMemoryStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore("")
	require.NoError(t, store.EnsurePublicBucket(ctx, "b"))
	require.NoError(t, store.Upload(ctx, "b", "k", "image/png", strings.NewReader("x"), 1))

	require.NoError(t, store.Remove(ctx, "b", "k"))
	assert.Equal(t, 0, store.Len("b"))
	assert.NoError(t, store.Remove(ctx, "b", "k"))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Unable to read Supabase buckets: boom",
		(&storage.Error{Op: "list buckets", Message: "boom"}).Error())
	assert.Equal(t, `Unable to create Supabase bucket "slips": denied`,
		(&storage.Error{Op: "create bucket", Bucket: "slips", Message: "denied"}).Error())
	assert.Equal(t, `Supabase upload in bucket "slips" failed: exists`,
		(&storage.Error{Op: "upload", Bucket: "slips", Message: "exists"}).Error())
}
