package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
)

// Object is a stored slip image.
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps objects in process memory. It backs local development
// and tests; the server exposes its public URLs under /uploads.
type MemoryStore struct {
	baseURL string
	buckets map[string]bool // bucket name -> public
	objects map[string]map[string]Object
	mu      sync.RWMutex
}

// NewMemoryStore creates a MemoryStore whose public URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		buckets: make(map[string]bool),
		objects: make(map[string]map[string]Object),
	}
}

// EnsurePublicBucket creates the bucket or makes it public.
func (m *MemoryStore) EnsurePublicBucket(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buckets[name] = true
	if _, ok := m.objects[name]; !ok {
		m.objects[name] = make(map[string]Object)
	}
	return nil
}

// Upload stores the object; existing keys are rejected.
func (m *MemoryStore) Upload(ctx context.Context, bucketName, key, contentType string, body io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if size > 0 {
		buf.Grow(int(size))
	}
	if _, err := io.Copy(&buf, body); err != nil {
		return &Error{Op: "upload", Bucket: bucketName, Message: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	objects, ok := m.objects[bucketName]
	if !ok {
		return &Error{Op: "upload", Bucket: bucketName, Status: 404, Message: "Bucket not found"}
	}
	if _, exists := objects[key]; exists {
		return &Error{Op: "upload", Bucket: bucketName, Status: 409, Message: "The resource already exists"}
	}
	objects[key] = Object{ContentType: contentType, Data: buf.Bytes()}
	return nil
}

// Remove deletes an object. Missing objects are ignored.
func (m *MemoryStore) Remove(_ context.Context, bucketName, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if objects, ok := m.objects[bucketName]; ok {
		delete(objects, key)
	}
	return nil
}

// PublicURL returns the URL the server serves the object under.
func (m *MemoryStore) PublicURL(bucketName, key string) string {
	return m.baseURL + "/uploads/" + url.PathEscape(bucketName) + "/" + escapeKey(key)
}

// Get returns a stored object.
func (m *MemoryStore) Get(bucketName, key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.buckets[bucketName] {
		return Object{}, false
	}
	obj, ok := m.objects[bucketName][key]
	return obj, ok
}

// Len returns the number of objects in a bucket.
func (m *MemoryStore) Len(bucketName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects[bucketName])
}
