package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/organization"
)

// RegisterOrganizationRoutes wires organization CRUD.
func RegisterOrganizationRoutes(api fiber.Router, h *organization.Handler) {
	grp := api.Group("/organizations")
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}
