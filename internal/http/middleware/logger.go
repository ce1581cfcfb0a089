package middleware

import (
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"docverify/internal/logging"
)

// Logger is a middleware that logs each HTTP request as one structured record.
// Fields:
// - request_id (set by the RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
//
// Server errors are logged at error level, client errors at warn.
func Logger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		level := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}

		ctx := c.UserContext()
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			// Path only, no query string.
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		// Loggers from logging.New already add the id carried by the context.
		if logging.RequestID(ctx) == "" {
			attrs = append([]slog.Attr{slog.String("request_id", rid)}, attrs...)
		}
		log.LogAttrs(ctx, level, "http_request", attrs...)

		return err
	}
}

// LoggerWithWriter logs JSON lines to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, "info", loc))
}
