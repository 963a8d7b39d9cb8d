// Package apiclient is a Go client for the club shop HTTP API. It keeps the
// session cookie returned by login and caches read queries under coarse tags
// that mutations invalidate.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// DefaultTimeout bounds every request unless the context ends sooner.
const DefaultTimeout = 10 * time.Second

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// AppError is returned for non-2xx responses and timeouts.
type AppError struct {
	Message string
	Status  int // zero when no response arrived
	Detail  any // decoded response body
}

func (e *AppError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an AppError with the given status.
func IsStatus(err error, status int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Status == status
}

// Client talks to one shop server.
type Client struct {
	baseURL string
	timeout time.Duration
	cache   *tagCache

	mu      sync.RWMutex
	session string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSession starts the client with an existing session token.
func WithSession(token string) Option {
	return func(c *Client) {
		c.session = token
	}
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		cache:   newTagCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session token, if any.
func (c *Client) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) setSession(token string) {
	c.mu.Lock()
	c.session = token
	c.mu.Unlock()
	// Cached admin data belongs to the previous session.
	c.cache.clear()
}

type request struct {
	method      string
	path        string
	jsonBody    any
	body        []byte
	contentType string
}

type response struct {
	status int
	body   []byte
	cookie string // SessionCookie value when the response set one
}

// send performs one request. Non-2xx answers become *AppError.
func (c *Client) send(ctx context.Context, r request) (*response, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &AppError{Message: "Request timeout"}
		}
		return nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, &AppError{Message: "Request timeout"}
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(r.method)
	req.SetRequestURI(c.baseURL + r.path)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, fmt.Errorf("invalid request URL %q: %w", c.baseURL+r.path, err)
	}
	a.Timeout(timeout)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token := c.Session(); token != "" {
		a.Cookie(SessionCookie, token)
	}
	switch {
	case r.jsonBody != nil:
		a.JSON(r.jsonBody)
	case r.body != nil:
		a.ContentType(r.contentType)
		a.Body(r.body)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, &AppError{Message: "Request timeout"}
		}
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}

	out := &response{status: code, body: body, cookie: sessionCookie(resp)}
	if code < 200 || code > 299 {
		return nil, decodeError(code, string(resp.Header.ContentType()), body)
	}
	return out, nil
}

func sessionCookie(resp *fasthttp.Response) string {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(SessionCookie)
	if !resp.Header.Cookie(cookie) {
		return ""
	}
	return string(cookie.Value())
}

// decodeError builds an AppError from an error response. The message is
// taken from the error field, then message, of a JSON body.
func decodeError(status int, contentType string, body []byte) *AppError {
	appErr := &AppError{Message: "Request failed", Status: status, Detail: string(body)}
	if !strings.Contains(contentType, fiber.MIMEApplicationJSON) {
		return appErr
	}

	var detail any
	if err := json.Unmarshal(body, &detail); err != nil {
		return appErr
	}
	appErr.Detail = detail
	if fields, ok := detail.(map[string]any); ok {
		for _, key := range []string{"error", "message"} {
			if msg, ok := fields[key].(string); ok && msg != "" {
				appErr.Message = msg
				break
			}
		}
	}
	return appErr
}

// call sends r and decodes a JSON answer into out.
func (c *Client) call(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	return decodeInto(resp.body, out)
}

func decodeInto(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// query serves a GET from the cache, fetching and caching it under tags on
// a miss.
func (c *Client) query(ctx context.Context, path string, tags []string, out any) error {
	if body, ok := c.cache.get(path); ok {
		return decodeInto(body, out)
	}
	resp, err := c.send(ctx, request{method: fiber.MethodGet, path: path})
	if err != nil {
		return err
	}
	c.cache.put(path, resp.body, tags...)
	return decodeInto(resp.body, out)
}

// Message is the {message} answer of delete and logout calls.
type Message struct {
	Message string `json:"message"`
}

// Health reports the server status.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.call(ctx, request{method: fiber.MethodGet, path: "/health"}, &out)
	return out, err
}
