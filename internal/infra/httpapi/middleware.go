package httpapi

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/infra/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader is the header used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key the request ID is stored under in fiber locals.
	RequestIDLocalKey = "request_id"
)

// RequestID reuses the incoming X-Request-ID or generates a new one, and echoes it back.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// RequestLogger writes one structured entry per request.
func RequestLogger(logger *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		entry := logger.WithFields(logrus.Fields{
			"request_id": requestIDFromCtx(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000,
		})
		if status >= fiber.StatusInternalServerError {
			entry.Error("HTTP request failed")
		} else {
			entry.Info("HTTP request")
		}
		return err
	}
}

// Prometheus counts requests by method, route pattern and status. /metrics itself is not counted.
func Prometheus(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil || c.Path() == "/metrics" {
			return c.Next()
		}

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		m.HTTPRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		return err
	}
}

// BearerAuth accepts only "Authorization: Bearer <apiKey>".
func BearerAuth(apiKey string) fiber.Handler {
	expected := []byte(apiKey)
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || apiKey == "" || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), expected) != 1 {
			return writeAppError(c, app.ErrUnauthorized)
		}
		return c.Next()
	}
}

func statusOf(err error) int {
	if e, ok := err.(*fiber.Error); ok {
		return e.Code
	}
	return fiber.StatusInternalServerError
}
