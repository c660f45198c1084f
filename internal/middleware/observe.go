package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/metrics"
)

// Observe emits a structured log line per request and records Prometheus
// counters and latency histograms. The route pattern, not the raw path, is
// used as the metric label to keep cardinality bounded.
func Observe(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				status = appErr.Status
			} else if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		duration := time.Since(start)
		requestID, _ := c.Locals(requestIDHeader).(string)

		routeLabel := c.Route().Path
		if routeLabel == "" {
			routeLabel = c.Path()
		}
		statusLabel := strconv.Itoa(status)
		metrics.HTTPRequests.WithLabelValues(c.Method(), routeLabel, statusLabel).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Method(), routeLabel, statusLabel).Observe(duration.Seconds())

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		}
		if requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
			logger.Error("request completed", attrs...)
			return err
		}

		logger.Info("request completed", attrs...)
		return nil
	}
}
