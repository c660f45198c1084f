package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/bus"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/route"
	"github.com/movesmart/transit/internal/trip"
	"github.com/movesmart/transit/internal/user"
)

// RegisterDashboardRoute wires the summary-count endpoint used by admin UIs.
func RegisterDashboardRoute(api fiber.Router, users *user.Service, buses *bus.Service, routes *route.Service, trips *trip.Service) {
	api.Get("/dashboard", func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		usersByRole := fiber.Map{}
		var totalUsers int
		for _, role := range identity.Roles() {
			list, err := users.ListByRole(ctx, role)
			if err != nil {
				return err
			}
			usersByRole[string(role)] = len(list)
			totalUsers += len(list)
		}

		busList, err := buses.List(ctx)
		if err != nil {
			return err
		}
		routeList, err := routes.List(ctx)
		if err != nil {
			return err
		}
		tripCounts, err := trips.CountByStatus(ctx)
		if err != nil {
			return err
		}
		tripsByStatus := fiber.Map{}
		var totalTrips int
		for status, count := range tripCounts {
			tripsByStatus[string(status)] = count
			totalTrips += count
		}

		return c.JSON(fiber.Map{
			"users":  fiber.Map{"total": totalUsers, "byRole": usersByRole},
			"buses":  fiber.Map{"total": len(busList)},
			"routes": fiber.Map{"total": len(routeList)},
			"trips":  fiber.Map{"total": totalTrips, "byStatus": tripsByStatus},
		})
	})
}
