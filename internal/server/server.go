// Package server assembles the fiber application.
package server

import (
	"errors"
	"log"
	"time"

	"github.com/BookCnk/sit-football-club/internal/handlers"
	"github.com/BookCnk/sit-football-club/internal/middleware"
	"github.com/BookCnk/sit-football-club/internal/services"
	"github.com/BookCnk/sit-football-club/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// BodyLimit leaves room for a 5 MiB slip plus the multipart envelope.
const BodyLimit = 8 * 1024 * 1024

// LoginPath is where page navigations without an admin session end up.
const LoginPath = "/login"

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth      *services.AuthService
	ShopItems *services.ShopItemService
	Orders    *services.OrderService
	// Uploads is set when slips are kept in memory; its objects are then
	// served under /uploads.
	Uploads       *storage.MemoryStore
	CookieSecure  bool
	EventsEnabled bool
	// Quiet disables the request logger and startup banner.
	Quiet bool
}

// NewApp builds the fiber app with every route registered.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "sit-football-club",
		BodyLimit:             BodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: d.Quiet,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if !d.Quiet {
		app.Use(logger.New())
	}

	// Page and admin API prefixes send anyone without an admin session to
	// the login page.
	pageGate := middleware.RequireAdmin(d.Auth, middleware.RedirectFailure(LoginPath))
	app.Use("/admin", pageGate)
	app.Use("/api/admin", pageGate)

	// --- API Routes ---
	api := app.Group("/api")
	adminOnly := middleware.RequireAdmin(d.Auth, middleware.JSONFailure)

	handlers.NewAuthHandler(d.Auth, d.CookieSecure).RegisterRoutes(api)
	handlers.NewShopItemHandler(d.ShopItems).RegisterRoutes(api, adminOnly)
	handlers.NewOrderHandler(d.Orders).RegisterRoutes(api, adminOnly)
	handlers.NewAdminHandler(d.Orders).RegisterRoutes(api.Group("/admin"))

	if d.Uploads != nil {
		handlers.NewUploadsHandler(d.Uploads).RegisterRoutes(app)
	}

	// --- Health Check Endpoint ---
	events := "disabled"
	if d.EventsEnabled {
		events = "enabled"
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events,
		})
	})

	return app
}

// errorHandler answers errors that escape the handlers in the same {error}
// shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("[%s %s] %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
