package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/config"
	"github.com/movesmart/transit/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app   *fiber.App
	cfg   config.Config
	db    *pgxpool.Pool
	cache *redis.Client
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler(logger),
	})

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, db: db, cache: cache}, nil
}

// errorHandler renders application errors as {"error": <category>,
// "message": <msg>}. Unexpected errors are logged with their cause and
// rendered as a generic 500 so internals never leak to clients.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperr.As(err); ok {
			return c.Status(appErr.Status).JSON(fiber.Map{
				"error":   appErr.Category(),
				"message": appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   http.StatusText(fiberErr.Code),
				"message": fiberErr.Message,
			})
		}

		if logger != nil {
			logger.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":   http.StatusText(http.StatusInternalServerError),
			"message": "An unexpected error occurred",
		})
	}
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
