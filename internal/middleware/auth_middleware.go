package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie is the cookie that carries the session token.
const TokenCookie = "token"

// ClaimsKey is the fiber.Ctx local the verified claims are stored under.
const ClaimsKey = "claims"

// AdminGate decides whether a token grants admin access.
type AdminGate interface {
	RequireAdmin(token string) (*services.AdminClaims, error)
}

// Authenticator accepts any valid session token.
type Authenticator interface {
	Authenticate(token string) (*services.AdminClaims, error)
}

// FailureRenderer writes the response for a rejected request.
type FailureRenderer func(c *fiber.Ctx, err error) error

// JSONFailure answers API callers with a JSON error.
func JSONFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrJWTSecretMissing):
		log.Printf("[%s %s] admin gate: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": services.ErrJWTSecretMissing.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": services.ErrForbidden.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrUnauthorized.Error()})
	default:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}
}

// RedirectFailure sends page navigations to the login page.
func RedirectFailure(location string) FailureRenderer {
	return func(c *fiber.Ctx, err error) error {
		if errors.Is(err, services.ErrJWTSecretMissing) {
			log.Printf("[%s %s] admin gate: %v", c.Method(), c.Path(), err)
		}
		return c.Redirect(location, fiber.StatusSeeOther)
	}
}

// TokenFromRequest reads the session token from the token cookie, falling
// back to an "Authorization: Bearer" header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookie); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAdmin only lets admin sessions through.
func RequireAdmin(gate AdminGate, onFailure FailureRenderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := gate.RequireAdmin(TokenFromRequest(c))
		if err != nil {
			return onFailure(c, err)
		}
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// AuthRequired lets any valid session through.
func AuthRequired(auth Authenticator, onFailure FailureRenderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := auth.Authenticate(TokenFromRequest(c))
		if err != nil {
			return onFailure(c, err)
		}
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// Claims returns the claims stored by RequireAdmin or AuthRequired.
func Claims(c *fiber.Ctx) *services.AdminClaims {
	claims, _ := c.Locals(ClaimsKey).(*services.AdminClaims)
	return claims
}
