// Package storage stores payment slip images in object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxSlipSizeBytes is the largest slip image accepted, also applied as the
// bucket file size limit.
const MaxSlipSizeBytes = 5 * 1024 * 1024

// ObjectStore is the object storage gateway used for payment slips.
type ObjectStore interface {
	// EnsurePublicBucket creates the bucket, or makes it public, so that
	// PublicURL links resolve without credentials.
	EnsurePublicBucket(ctx context.Context, bucket string) error
	// Upload stores body under key. Existing objects are never overwritten.
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) error
	PublicURL(bucket, key string) string
	Remove(ctx context.Context, bucket, key string) error
}

var (
	_ ObjectStore = (*SupabaseStore)(nil)
	_ ObjectStore = (*MemoryStore)(nil)
)

// Error reports a failure returned by the storage provider.
type Error struct {
	Op      string
	Bucket  string
	Status  int
	Message string
}

func (e *Error) Error() string {
	switch e.Op {
	case "list buckets":
		return fmt.Sprintf("Unable to read Supabase buckets: %s", e.Message)
	case "create bucket", "update bucket":
		return fmt.Sprintf("Unable to %s Supabase bucket %q: %s", strings.TrimSuffix(e.Op, " bucket"), e.Bucket, e.Message)
	default:
		return fmt.Sprintf("Supabase %s in bucket %q failed: %s", e.Op, e.Bucket, e.Message)
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// SafeExtension returns the lowercase alphanumeric extension of filename,
// defaulting to png.
func SafeExtension(filename string) string {
	ext := "png"
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = strings.ToLower(filename[i+1:])
	} else if filename != "" {
		ext = strings.ToLower(filename)
	}
	ext = nonAlphanumeric.ReplaceAllString(ext, "")
	if ext == "" {
		return "png"
	}
	return ext
}

// SlipKey derives the object key of a slip:
// shop-orders/<itemId>/<unixMillis>-<uuid>.<ext>.
func SlipKey(itemID uint, now time.Time, filename string) string {
	return fmt.Sprintf("shop-orders/%d/%d-%s.%s", itemID, now.UnixMilli(), uuid.NewString(), SafeExtension(filename))
}
