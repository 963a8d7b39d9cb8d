package apiclient

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// LoginUser is the account summary returned by login.
type LoginUser struct {
	ID    uint    `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}

// LoginResponse is the JSON answer of a successful login.
type LoginResponse struct {
	Message    string    `json:"message"`
	RedirectTo string    `json:"redirectTo"`
	User       LoginUser `json:"user"`
}

// Profile is the identity carried by the session token.
type Profile struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login signs in and keeps the session cookie for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.send(ctx, request{
		method:   fiber.MethodPost,
		path:     "/api/auth/login",
		jsonBody: map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	var out LoginResponse
	if err := decodeInto(resp.body, &out); err != nil {
		return nil, err
	}
	if resp.cookie != "" {
		c.setSession(resp.cookie)
	}
	return &out, nil
}

// Logout clears the session on both ends.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, request{method: fiber.MethodPost, path: "/api/auth/logout"}, nil)
	c.setSession("")
	return err
}

// Profile returns the signed-in identity.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out struct {
		User Profile `json:"user"`
	}
	if err := c.call(ctx, request{method: fiber.MethodGet, path: "/api/auth/profile"}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}
