package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/location"
)

// RegisterLocationRoutes wires position reporting and live tracking.
func RegisterLocationRoutes(api fiber.Router, h *location.Handler) {
	grp := api.Group("/locations")
	grp.Post("/bus", h.ReportBus)
	grp.Get("/bus/:busId", h.LatestBus)
	grp.Get("/bus/:busId/history", h.BusHistory)
	grp.Post("/passenger", h.ReportPassenger)
	grp.Get("/passenger/:passengerId", h.LatestPassenger)
	grp.Get("/passenger/:passengerId/history", h.PassengerHistory)
}
