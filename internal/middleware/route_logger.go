package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs each request exit with status, duration and trace ID.
// Server errors log at error level.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		start := time.Now()
		log.Debug().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Msg("Entering request")
		err := c.Next()

		status := c.Response().StatusCode()
		level := zerolog.InfoLevel
		if err != nil || status >= fiber.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}
		ev := log.WithLevel(level).
			Str("trace_id", traceID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds())
		if u := GetUser(c); u != nil {
			ev = ev.Str("resident_id", u.ResidentID)
		}
		ev.Err(err).Msg("Exiting request")
		return err
	}
}
