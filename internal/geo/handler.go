package geo

import (
	"github.com/gofiber/fiber/v2"
)

// Handler exposes the geocoding proxy endpoint.
type Handler struct {
	client *Client
}

// NewHandler builds the geocoding HTTP handler.
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Geocode forwards the query upstream and relays the raw JSON document.
func (h *Handler) Geocode(c *fiber.Ctx) error {
	body, err := h.client.Geocode(c.UserContext(), Query{
		Address: c.Query("address"),
		LatLng:  c.Query("latlng"),
		PlaceID: c.Query("place_id"),
	})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}
