package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/trip"
)

// RegisterTripRoutes wires booking and trip lifecycle endpoints.
func RegisterTripRoutes(api fiber.Router, h *trip.Handler) {
	grp := api.Group("/trips")
	grp.Get("/my", h.Mine)
	grp.Post("/", h.Book)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Update)
	grp.Post("/:id/cancel", h.Cancel)
	grp.Delete("/:id", h.Delete)
}
