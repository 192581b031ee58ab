package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/quotapay/quotapay/internal/pkg/billing"
)

var validate = validator.New()

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// errorJSON maps billing errors to HTTP status codes and a JSON error body.
func errorJSON(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, billing.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, billing.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, billing.ErrSellerNotOnboarded):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
