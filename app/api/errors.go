package api

import (
	"errors"

	"docqa/types"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiError Error
	if errors.As(err, &apiError) {
		return c.Status(apiError.Code).JSON(apiError)
	}

	var valError ValidationError
	if errors.As(err, &valError) {
		return c.Status(valError.Status).JSON(valError)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(NewError(fiberError.Code, fiberError.Message))
	}

	apiError = NewError(statusFor(err), err.Error())
	return c.Status(apiError.Code).JSON(apiError)
}

// statusFor maps the domain error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidDocument),
		errors.Is(err, types.ErrParse),
		errors.Is(err, types.ErrEmptyConversation):
		return fiber.StatusBadRequest
	case errors.Is(err, types.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, types.ErrProvider):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}
