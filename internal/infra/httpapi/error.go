package httpapi

import (
	"errors"

	"oficinas_alerts/internal/app"

	"github.com/gofiber/fiber/v2"
)

// errorPayload is the body of every non-2xx response.
type errorPayload struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		RequestID: requestIDFromCtx(c),
	})
}

// writeAppError maps application errors onto HTTP status codes.
func writeAppError(c *fiber.Ctx, err error) error {
	return writeError(c, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, app.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, app.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, app.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, app.ErrTenantNotFound), errors.Is(err, app.ErrNotificationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, app.ErrScanInProgress):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the fiber global error handler.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return writeError(c, fe.Code, fe.Message)
		}
		return writeAppError(c, err)
	}
}
