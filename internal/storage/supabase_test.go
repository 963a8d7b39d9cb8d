package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/BookCnk/sit-football-club/internal/config"
	"github.com/BookCnk/sit-football-club/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServiceKey = "eyJhbGciOiJIUzI1NiJ9.eyJyb2xlIjoic2VydmljZV9yb2xlIn0.signature"

type recordedRequest struct {
	Method      string
	Path        string
	Auth        string
	APIKey      string
	ContentType string
	Upsert      string
	Body        string
}

type fakeSupabase struct {
	mu       sync.Mutex
	requests []recordedRequest
	buckets  string
	status   map[string]int
}

func (f *fakeSupabase) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.EscapedPath(),
		Auth:        r.Header.Get("Authorization"),
		APIKey:      r.Header.Get("apikey"),
		ContentType: r.Header.Get("Content-Type"),
		Upsert:      r.Header.Get("x-upsert"),
		Body:        string(body),
	})
	status := f.status[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"statusCode":"403","error":"Unauthorized","message":"new row violates row-level security policy"}`))
		return
	}
	if r.Method == http.MethodGet && r.URL.Path == "/storage/v1/bucket" {
		_, _ = w.Write([]byte(f.buckets))
		return
	}
	_, _ = w.Write([]byte(`{"message":"ok"}`))
}

func (f *fakeSupabase) setStatus(route string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[route] = code
}

func (f *fakeSupabase) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newFakeSupabase(t *testing.T, buckets string) (*fakeSupabase, *storage.SupabaseStore) {
	t.Helper()
	fake := &fakeSupabase{buckets: buckets, status: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)
	return fake, storage.NewSupabaseStore(storage.SupabaseConfig{URL: srv.URL + "/", ServiceRoleKey: testServiceKey})
}

func TestSupabaseEnsurePublicBucketCreatesMissingBucket(t *testing.T) {
	fake, store := newFakeSupabase(t, `[{"id":"avatars","name":"avatars","public":true}]`)

	require.NoError(t, store.EnsurePublicBucket(context.Background(), "payment-slips"))

	reqs := fake.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "GET", reqs[0].Method)
	assert.Equal(t, "Bearer "+testServiceKey, reqs[0].Auth)
	assert.Equal(t, testServiceKey, reqs[0].APIKey)

	create := reqs[1]
	assert.Equal(t, "POST", create.Method)
	assert.Equal(t, "/storage/v1/bucket", create.Path)
	var opts map[string]any
	require.NoError(t, json.Unmarshal([]byte(create.Body), &opts))
	assert.Equal(t, "payment-slips", opts["id"])
	assert.Equal(t, true, opts["public"])
	assert.EqualValues(t, storage.MaxSlipSizeBytes, opts["file_size_limit"])
}

func TestSupabaseEnsurePublicBucketMakesPrivateBucketPublic(t *testing.T) {
	fake, store := newFakeSupabase(t, `[{"id":"payment-slips","name":"payment-slips","public":false}]`)

	require.NoError(t, store.EnsurePublicBucket(context.Background(), "payment-slips"))

	reqs := fake.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "PUT", reqs[1].Method)
	assert.Equal(t, "/storage/v1/bucket/payment-slips", reqs[1].Path)
}

func TestSupabaseEnsurePublicBucketIsIdempotent(t *testing.T) {
	fake, store := newFakeSupabase(t, `[{"id":"payment-slips","name":"payment-slips","public":true}]`)

	require.NoError(t, store.EnsurePublicBucket(context.Background(), "payment-slips"))
	assert.Len(t, fake.recorded(), 1)
}

func TestSupabaseEnsurePublicBucketReportsProviderError(t *testing.T) {
	fake, store := newFakeSupabase(t, `[]`)
	fake.setStatus("POST /storage/v1/bucket", http.StatusForbidden)

	err := store.EnsurePublicBucket(context.Background(), "payment-slips")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Unable to create Supabase bucket "payment-slips"`)
	assert.Contains(t, err.Error(), "row-level security")
}

func TestSupabaseUpload(t *testing.T) {
	fake, store := newFakeSupabase(t, `[]`)

	err := store.Upload(context.Background(), "payment-slips", "shop-orders/3/1-abc.png", "image/png", strings.NewReader("image-bytes"), 11)
	require.NoError(t, err)

	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	up := reqs[0]
	assert.Equal(t, "POST", up.Method)
	assert.Equal(t, "/storage/v1/object/payment-slips/shop-orders/3/1-abc.png", up.Path)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, "false", up.Upsert)
	assert.Equal(t, "image-bytes", up.Body)
}

func TestSupabaseUploadFailure(t *testing.T) {
	fake, store := newFakeSupabase(t, `[]`)
	fake.setStatus("POST /storage/v1/object/payment-slips/k.png", http.StatusForbidden)

	err := store.Upload(context.Background(), "payment-slips", "k.png", "image/png", strings.NewReader("x"), 1)
	var stErr *storage.Error
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, http.StatusForbidden, stErr.Status)
}

func TestSupabaseRemove(t *testing.T) {
	fake, store := newFakeSupabase(t, `[]`)

	require.NoError(t, store.Remove(context.Background(), "payment-slips", "shop-orders/1/a.png"))
	reqs := fake.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "DELETE", reqs[0].Method)
	assert.JSONEq(t, `{"prefixes":["shop-orders/1/a.png"]}`, reqs[0].Body)
}

func TestSupabasePublicURL(t *testing.T) {
	store := storage.NewSupabaseStore(storage.SupabaseConfig{URL: "https://abc.supabase.co/", ServiceRoleKey: testServiceKey})
	assert.Equal(t,
		"https://abc.supabase.co/storage/v1/object/public/payment-slips/shop-orders/1/a.png",
		store.PublicURL("payment-slips", "shop-orders/1/a.png"))
}

func TestSupabaseConfigurationErrors(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		cfg  storage.SupabaseConfig
		key  string
		msg  string
	}{
		{"missing url", storage.SupabaseConfig{ServiceRoleKey: testServiceKey}, "SUPABASE_URL", "Missing required environment variable: SUPABASE_URL"},
		{"missing key", storage.SupabaseConfig{URL: "https://abc.supabase.co"}, "SUPABASE_SERVICE_ROLE_KEY", "Add SUPABASE_SERVICE_ROLE_KEY"},
		{"anon-looking key", storage.SupabaseConfig{URL: "https://abc.supabase.co", ServiceRoleKey: "sb_publishable_123"}, "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_SERVICE_ROLE_KEY is invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := storage.NewSupabaseStore(tc.cfg)

			err := store.Upload(ctx, "payment-slips", "k", "image/png", strings.NewReader("x"), 1)
			var cfgErr *config.Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.key, cfgErr.Key)
			assert.Contains(t, cfgErr.Message, tc.msg)

			assert.ErrorAs(t, store.EnsurePublicBucket(ctx, "payment-slips"), &cfgErr)
		})
	}
}
