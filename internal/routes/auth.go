package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/auth"
)

// RegisterAuthRoutes wires registration and login. Login carries a Redis
// backed rate limit keyed by identifier or IP.
func RegisterAuthRoutes(api fiber.Router, h *auth.Handler, loginRateLimit fiber.Handler) {
	grp := api.Group("/auth")
	grp.Post("/register", h.Register)
	grp.Post("/register/user", h.RegisterUser)
	grp.Post("/register/passenger", h.RegisterPassenger)
	grp.Post("/register/driver", h.RegisterDriver)
	grp.Post("/register/admin", h.RegisterAdmin)
	grp.Post("/login", loginRateLimit, h.Login)
}
