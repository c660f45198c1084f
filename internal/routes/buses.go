package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/bus"
)

// RegisterBusRoutes wires fleet management endpoints.
func RegisterBusRoutes(api fiber.Router, h *bus.Handler) {
	grp := api.Group("/buses")
	grp.Get("/my-bus", h.MyBus)
	grp.Get("/plate/:plate", h.GetByPlate)
	grp.Post("/assign-driver", h.AssignDriver)
	grp.Post("/unassign-driver", h.UnassignDriver)
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}
