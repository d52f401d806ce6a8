package httperr

import (
	"errors"

	"notely/internal/logger"
	"notely/internal/services/calendar"
	"notely/internal/services/entitlements"
	"notely/internal/services/notes"
	"notely/internal/services/profiles"
	util "notely/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// E represents an HTTP error with status code and message
type E struct {
	Status  int    `json:"-" example:"400"`
	Message string `json:"error" example:"Bad Request"`
}

// Error implements the error interface
func (e E) Error() string {
	return e.Message
}

// JSON returns the error as JSON response
func (e E) JSON(c *fiber.Ctx) error {
	return c.Status(e.Status).JSON(e)
}

// Fail returns the error for Fiber's global error handler to process
func Fail(err E) error {
	return err
}

// InvalidInput wraps a validation error and returns the standard response.
func InvalidInput(err error) error {
	return Fail(E{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid input: " + err.Error(),
	})
}

// InternalError returns an internal server error with the given message
func InternalError(message string) E {
	return E{Status: fiber.StatusInternalServerError, Message: message}
}

// Pre-defined HTTP errors
var (
	ErrBadRequest      = E{Status: fiber.StatusBadRequest, Message: "Bad Request"}
	ErrUnauthorized    = E{Status: fiber.StatusUnauthorized, Message: "Unauthorized"}
	ErrNotFound        = E{Status: fiber.StatusNotFound, Message: "Not Found"}
	ErrTooManyRequests = E{Status: fiber.StatusTooManyRequests, Message: "Too Many Requests"}
	ErrInternal        = InternalError("Internal Server Error")
)

// FromService maps a core error onto its HTTP status. The message of
// client errors is passed through; server errors are masked.
func FromService(err error) E {
	var e E
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, util.ErrValidation),
		errors.Is(err, calendar.ErrInvalidArgument):
		return E{Status: fiber.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, profiles.ErrAuth):
		return E{Status: fiber.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, entitlements.ErrQuotaExceeded),
		errors.Is(err, entitlements.ErrFeatureLocked),
		errors.Is(err, entitlements.ErrBilling):
		return E{Status: fiber.StatusPaymentRequired, Message: err.Error()}
	case errors.Is(err, profiles.ErrAlreadyRegistered):
		return E{Status: fiber.StatusConflict, Message: err.Error()}
	case errors.Is(err, profiles.ErrNotFound),
		errors.Is(err, notes.ErrNoteNotFound),
		errors.Is(err, notes.ErrTodoNotFound),
		errors.Is(err, calendar.ErrEventNotFound),
		errors.Is(err, calendar.ErrReminderNotFound),
		errors.Is(err, entitlements.ErrProductNotFound):
		return E{Status: fiber.StatusNotFound, Message: err.Error()}
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return E{Status: fiberError.Code, Message: fiberError.Message}
	}

	return ErrInternal
}

// Handler is the global error handler for Fiber
func Handler(c *fiber.Ctx, err error) error {
	e := FromService(err)
	if e.Status >= fiber.StatusInternalServerError {
		logger.L().Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return e.JSON(c)
}
