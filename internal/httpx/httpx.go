// Package httpx holds the fiber plumbing shared by the feature handlers:
// JSON error bodies, id parsing and request logging.
package httpx

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

var ErrInvalidID = errors.New("invalid id")

// ValidationError carries field-level problems found by a service.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Validation wraps fields in a ValidationError, or returns nil when empty.
func Validation(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Message writes {"message": msg} with the given status.
func Message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// Invalid writes a 400 carrying every field problem at once.
func Invalid(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "validation failed",
		"errors":  fields,
	})
}

// Fail answers a ValidationError with 400 and anything else with a logged
// 500. Handlers call it after matching their own sentinel errors.
func Fail(c *fiber.Ctx, err error, msg string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return Invalid(c, ve.Fields)
	}
	return Internal(c, err, msg)
}

// Internal logs err and answers 500 with a generic message; driver errors
// never reach the client.
func Internal(c *fiber.Ctx, err error, msg string) error {
	slog.Error(msg,
		"error", err,
		"method", c.Method(),
		"path", c.Path(),
		"requestId", RequestID(c),
	)
	return Message(c, fiber.StatusInternalServerError, msg)
}

// ParseID reads a positive integer route parameter.
func ParseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// RequestID returns the id assigned by the requestid middleware, if any.
func RequestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// RequestLogger logs one line per request once the rest of the chain has run.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(c.UserContext(), level, "http request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
			"ip", c.IP(),
			"requestId", RequestID(c),
		)
		return err
	}
}
