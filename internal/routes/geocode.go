package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/geo"
)

// RegisterGeoRoutes wires the public geocoding passthrough.
func RegisterGeoRoutes(api fiber.Router, h *geo.Handler) {
	api.Get("/geocode", h.Geocode)
}
