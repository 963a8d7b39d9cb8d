package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/BookCnk/sit-football-club/internal/config"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 30 * time.Second

// SupabaseConfig holds Supabase Storage connection details.
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
	Timeout        time.Duration
}

// SupabaseStore talks to the Supabase Storage REST API. Credentials are
// checked on every call so a misconfigured deployment reports exactly which
// setting is wrong.
type SupabaseStore struct {
	baseURL string
	key     string
	timeout time.Duration
}

// NewSupabaseStore creates a new SupabaseStore.
func NewSupabaseStore(cfg SupabaseConfig) *SupabaseStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SupabaseStore{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		key:     strings.TrimSpace(cfg.ServiceRoleKey),
		timeout: timeout,
	}
}

type bucket struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

type bucketOptions struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Public        bool   `json:"public"`
	FileSizeLimit int64  `json:"file_size_limit"`
}

type apiError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (s *SupabaseStore) checkCredentials() error {
	if s.baseURL == "" {
		return config.Missing("SUPABASE_URL")
	}
	if s.key == "" {
		return &config.Error{
			Key:     "SUPABASE_SERVICE_ROLE_KEY",
			Message: "Slip upload is not configured. Add SUPABASE_SERVICE_ROLE_KEY to .env.local and restart the server.",
		}
	}
	if !looksLikeJWT(s.key) {
		return &config.Error{
			Key:     "SUPABASE_SERVICE_ROLE_KEY",
			Message: "SUPABASE_SERVICE_ROLE_KEY is invalid. Copy the service_role key from Supabase Project Settings > API.",
		}
	}
	return nil
}

func looksLikeJWT(key string) bool {
	return strings.HasPrefix(key, "eyJ") && len(strings.Split(key, ".")) == 3
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// call performs one request and returns the status code and body.
func (s *SupabaseStore) call(ctx context.Context, method, path string, prepare func(a *fiber.Agent)) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(s.baseURL + path)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return 0, nil, fmt.Errorf("invalid Supabase URL %q: %w", s.baseURL, err)
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	a.Timeout(timeout)
	a.Set("apikey", s.key)
	a.Set(fiber.HeaderAuthorization, "Bearer "+s.key)
	if prepare != nil {
		prepare(a)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return 0, nil, errors.Join(errs...)
	}
	return code, body, nil
}

func providerMessage(code int, body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	if len(body) > 0 {
		return strings.TrimSpace(string(body))
	}
	return fmt.Sprintf("unexpected status %d", code)
}

func jsonBody(v any) func(a *fiber.Agent) {
	return func(a *fiber.Agent) {
		body, _ := json.Marshal(v)
		a.ContentType(fiber.MIMEApplicationJSON)
		a.Body(body)
	}
}

func (s *SupabaseStore) listBuckets(ctx context.Context) ([]bucket, error) {
	code, body, err := s.call(ctx, fiber.MethodGet, "/storage/v1/bucket", nil)
	if err != nil {
		return nil, &Error{Op: "list buckets", Message: err.Error()}
	}
	if code != fiber.StatusOK {
		return nil, &Error{Op: "list buckets", Status: code, Message: providerMessage(code, body)}
	}
	var buckets []bucket
	if err := json.Unmarshal(body, &buckets); err != nil {
		return nil, &Error{Op: "list buckets", Status: code, Message: err.Error()}
	}
	return buckets, nil
}

// EnsurePublicBucket creates the bucket, or flips an existing one to public.
func (s *SupabaseStore) EnsurePublicBucket(ctx context.Context, name string) error {
	if err := s.checkCredentials(); err != nil {
		return err
	}

	buckets, err := s.listBuckets(ctx)
	if err != nil {
		return err
	}

	opts := bucketOptions{ID: name, Name: name, Public: true, FileSizeLimit: MaxSlipSizeBytes}
	for _, b := range buckets {
		if b.ID != name && b.Name != name {
			continue
		}
		if b.Public {
			return nil
		}
		code, body, err := s.call(ctx, fiber.MethodPut, "/storage/v1/bucket/"+url.PathEscape(name), jsonBody(opts))
		if err != nil {
			return &Error{Op: "update bucket", Bucket: name, Message: err.Error()}
		}
		if code != fiber.StatusOK {
			return &Error{Op: "update bucket", Bucket: name, Status: code, Message: providerMessage(code, body)}
		}
		return nil
	}

	code, body, err := s.call(ctx, fiber.MethodPost, "/storage/v1/bucket", jsonBody(opts))
	if err != nil {
		return &Error{Op: "create bucket", Bucket: name, Message: err.Error()}
	}
	if code != fiber.StatusOK && code != fiber.StatusCreated {
		return &Error{Op: "create bucket", Bucket: name, Status: code, Message: providerMessage(code, body)}
	}
	return nil
}

// Upload stores body under key. Existing objects are never overwritten.
func (s *SupabaseStore) Upload(ctx context.Context, bucketName, key, contentType string, body io.Reader, size int64) error {
	if err := s.checkCredentials(); err != nil {
		return err
	}

	path := "/storage/v1/object/" + url.PathEscape(bucketName) + "/" + escapeKey(key)
	code, resp, err := s.call(ctx, fiber.MethodPost, path, func(a *fiber.Agent) {
		a.ContentType(contentType)
		a.Set("x-upsert", "false")
		a.Set(fiber.HeaderCacheControl, "max-age=3600")
		a.BodyStream(body, int(size))
	})
	if err != nil {
		return &Error{Op: "upload", Bucket: bucketName, Message: err.Error()}
	}
	if code != fiber.StatusOK && code != fiber.StatusCreated {
		return &Error{Op: "upload", Bucket: bucketName, Status: code, Message: providerMessage(code, resp)}
	}
	return nil
}

// Remove deletes the object stored under key.
func (s *SupabaseStore) Remove(ctx context.Context, bucketName, key string) error {
	if err := s.checkCredentials(); err != nil {
		return err
	}

	payload := map[string][]string{"prefixes": {key}}
	code, resp, err := s.call(ctx, fiber.MethodDelete, "/storage/v1/object/"+url.PathEscape(bucketName), jsonBody(payload))
	if err != nil {
		return &Error{Op: "remove", Bucket: bucketName, Message: err.Error()}
	}
	if code != fiber.StatusOK {
		return &Error{Op: "remove", Bucket: bucketName, Status: code, Message: providerMessage(code, resp)}
	}
	return nil
}

// PublicURL returns the public download URL of an object.
func (s *SupabaseStore) PublicURL(bucketName, key string) string {
	return s.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucketName) + "/" + escapeKey(key)
}
