package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/notification"
)

// RegisterNotificationRoutes wires notification delivery and read tracking.
func RegisterNotificationRoutes(api fiber.Router, h *notification.Handler) {
	grp := api.Group("/notifications")
	grp.Post("/", h.Create)
	grp.Get("/", h.Mine)
	grp.Get("/unread", h.Unread)
	grp.Get("/unread/count", h.UnreadCount)
	grp.Put("/read-all", h.MarkAllRead)
	grp.Put("/:id/read", h.MarkRead)
}
