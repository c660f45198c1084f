package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/user"
)

// RegisterUserRoutes wires profile and user management endpoints. The fixed
// paths are registered before the parameterized ones so "me" and the role
// listings are not swallowed by ":id".
func RegisterUserRoutes(api fiber.Router, h *user.Handler) {
	grp := api.Group("/users")
	grp.Get("/me", h.Me)
	grp.Put("/me", h.UpdateMe)
	grp.Post("/me/password", h.ChangePassword)
	grp.Get("/drivers", h.ListDrivers)
	grp.Get("/passengers", h.ListPassengers)
	grp.Get("/admins", h.ListAdmins)
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}
