package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/route"
)

// RegisterRouteRoutes wires transit line management, including the bus
// attachment operations.
func RegisterRouteRoutes(api fiber.Router, h *route.Handler) {
	grp := api.Group("/routes")
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
	grp.Post("/:id/buses", h.AttachBus)
	grp.Delete("/:id/buses/:busId", h.DetachBus)
}
