package helpers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/services"
)

var validate = validator.New()

// ValidateStruct runs the payload's validate tags and folds violations into
// the workflow ValidationError so handlers map them to 400 uniformly.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return &services.ValidationError{Msg: err.Error()}
	}
	return nil
}

// RespondError maps the workflow error taxonomy onto HTTP statuses:
// validation 400, invalid state 409, forbidden 403, not found 404.
// Anything else is a 500 and gets logged.
func RespondError(c *fiber.Ctx, err error) error {
	var (
		validationErr   *services.ValidationError
		invalidStateErr *services.InvalidStateError
		forbiddenErr    *services.ForbiddenError
		notFoundErr     *services.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Msg})
	case errors.As(err, &invalidStateErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": invalidStateErr.Error()})
	case errors.As(err, &forbiddenErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": forbiddenErr.Msg})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Error()})
	default:
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
