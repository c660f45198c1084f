package location

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/bus"
	"github.com/movesmart/transit/internal/identity"
)

// DriverBusResolver maps a driver to their assigned bus so a driver can only
// report positions for the bus they operate.
type DriverBusResolver interface {
	BusForDriver(ctx context.Context, driverID string) (bus.Bus, error)
}

// Handler exposes location reporting and tracking endpoints.
type Handler struct {
	svc       *Service
	driverBus DriverBusResolver
}

// NewHandler builds the location HTTP handler.
func NewHandler(svc *Service, driverBus DriverBusResolver) *Handler {
	return &Handler{svc: svc, driverBus: driverBus}
}

type busLocationResponse struct {
	ID         string    `json:"locationId"`
	BusID      string    `json:"busId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recordedAt"`
}

type passengerLocationResponse struct {
	ID          string    `json:"locationId"`
	PassengerID string    `json:"passengerId"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RecordedAt  time.Time `json:"recordedAt"`
}

func toBusResponse(loc BusLocation) busLocationResponse {
	return busLocationResponse{
		ID:         loc.ID,
		BusID:      loc.BusID,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		RecordedAt: loc.RecordedAt,
	}
}

func toPassengerResponse(loc PassengerLocation) passengerLocationResponse {
	return passengerLocationResponse{
		ID:          loc.ID,
		PassengerID: loc.PassengerID,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		RecordedAt:  loc.RecordedAt,
	}
}

type reportRequest struct {
	BusID     string  `json:"busId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReportBus records a bus position. Drivers report for their own bus only;
// admins may report for any bus.
func (h *Handler) ReportBus(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}

	busID := req.BusID
	if p.HasRole(identity.RoleDriver) {
		own, err := h.driverBus.BusForDriver(c.UserContext(), p.UserID)
		if err != nil {
			return err
		}
		if busID == "" {
			busID = own.ID
		} else if busID != own.ID {
			return apperr.Forbidden("Drivers can only report the location of their own bus")
		}
	}
	if busID == "" {
		return apperr.Validation("busId is required and cannot be empty")
	}

	loc, err := h.svc.ReportBus(c.UserContext(), busID, req.Latitude, req.Longitude)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toBusResponse(loc))
}

// LatestBus returns the most recent position for a bus.
func (h *Handler) LatestBus(c *fiber.Ctx) error {
	loc, err := h.svc.LatestBus(c.UserContext(), c.Params("busId"))
	if err != nil {
		return err
	}
	return c.JSON(toBusResponse(loc))
}

// BusHistory returns recent positions for a bus, newest first.
func (h *Handler) BusHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit")
	fixes, err := h.svc.BusHistory(c.UserContext(), c.Params("busId"), limit)
	if err != nil {
		return err
	}
	out := make([]busLocationResponse, 0, len(fixes))
	for _, loc := range fixes {
		out = append(out, toBusResponse(loc))
	}
	return c.JSON(out)
}

// ReportPassenger records the authenticated passenger's own position.
func (h *Handler) ReportPassenger(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	loc, err := h.svc.ReportPassenger(c.UserContext(), p.UserID, req.Latitude, req.Longitude)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toPassengerResponse(loc))
}

// LatestPassenger returns a passenger's most recent position. Passengers see
// their own; admins see anyone's.
func (h *Handler) LatestPassenger(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	passengerID := c.Params("passengerId")
	if !p.HasRole(identity.RoleAdmin) && passengerID != p.UserID {
		return apperr.Forbidden("Access denied: insufficient permissions")
	}
	loc, err := h.svc.LatestPassenger(c.UserContext(), passengerID)
	if err != nil {
		return err
	}
	return c.JSON(toPassengerResponse(loc))
}

// PassengerHistory returns a passenger's recent positions, newest first.
func (h *Handler) PassengerHistory(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	passengerID := c.Params("passengerId")
	if !p.HasRole(identity.RoleAdmin) && passengerID != p.UserID {
		return apperr.Forbidden("Access denied: insufficient permissions")
	}
	limit := c.QueryInt("limit")
	fixes, err := h.svc.PassengerHistory(c.UserContext(), passengerID, limit)
	if err != nil {
		return err
	}
	out := make([]passengerLocationResponse, 0, len(fixes))
	for _, loc := range fixes {
		out = append(out, toPassengerResponse(loc))
	}
	return c.JSON(out)
}
