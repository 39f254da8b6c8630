package handlers

import (
	"errors"

	"vapestore/internal/repositories"
	"vapestore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the service error taxonomy onto HTTP status codes.
// Validation and conflict failures are the caller's to fix (400), missing
// records are 404, and payment processor failures are 502 so callers know
// the whole request is safe to retry explicitly.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrBadSignature):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrGateway):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
