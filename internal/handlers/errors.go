package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/BookCnk/sit-football-club/internal/config"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto a status and an {error} body.
// Unclassified errors are logged and answered with fallback.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		operatorErr   *services.OperatorError
		configErr     *config.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return errorJSON(c, fiber.StatusBadRequest, validationErr.Reason)
	case errors.As(err, &notFoundErr):
		return errorJSON(c, fiber.StatusNotFound, notFoundErr.Message)
	case errors.Is(err, services.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrConflict):
		return errorJSON(c, fiber.StatusConflict, "Record is still referenced by existing orders.")
	case errors.Is(err, services.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrUnauthorized):
		return errorJSON(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	case errors.Is(err, services.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, services.ErrForbidden.Error())
	}

	log.Printf("[%s %s] %v", c.Method(), c.Path(), err)
	switch {
	case errors.Is(err, services.ErrJWTSecretMissing):
		return errorJSON(c, fiber.StatusInternalServerError, services.ErrJWTSecretMissing.Error())
	case errors.As(err, &operatorErr):
		return errorJSON(c, fiber.StatusInternalServerError, operatorErr.Message)
	case errors.As(err, &configErr):
		return errorJSON(c, fiber.StatusInternalServerError, configErr.Message)
	default:
		return errorJSON(c, fiber.StatusInternalServerError, fallback)
	}
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// paramID parses the :id route parameter. It answers 400 itself when the
// parameter is not a positive integer.
func paramID(c *fiber.Ctx) (uint, bool, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false, errorJSON(c, fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), true, nil
}
