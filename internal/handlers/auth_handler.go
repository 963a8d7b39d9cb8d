package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/BookCnk/sit-football-club/internal/middleware"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService  *services.AuthService
	validate     *validator.Validate
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. cookieSecure sets the Secure
// flag of the session cookie.
func NewAuthHandler(authService *services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		validate:     validator.New(),
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/profile", middleware.AuthRequired(h.authService, middleware.JSONFailure), h.HandleProfile)
}

// LoginRequest represents the request body for login. JSON and form bodies
// are both accepted.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HandleLogin checks the credentials and sets the session cookie. Browser
// form posts are redirected to the landing page of the user's role; API
// callers get JSON.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		return respondError(c, err, "Internal server error")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.TokenLifetime / time.Second),
		Expires:  time.Now().Add(services.TokenLifetime),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})

	redirectTo := "/"
	if user.IsAdmin() {
		redirectTo = "/dashboard"
	}
	if wantsRedirect(c) {
		return c.Redirect(redirectTo, fiber.StatusSeeOther)
	}

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"redirectTo": redirectTo,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// wantsRedirect reports whether the login came from a page navigation
// rather than a fetch call.
func wantsRedirect(c *fiber.Ctx) bool {
	if c.Query("redirect") == "true" {
		return true
	}
	if strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return false
	}
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) ||
		c.Get("Sec-Fetch-Mode") == "navigate" ||
		c.Get("Sec-Fetch-Dest") == "document"
}

// HandleLogout clears the session cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleProfile returns the identity carried by the session token.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    claims.UserID,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}
