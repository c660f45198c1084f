package trip

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
)

// Handler exposes trip booking and lifecycle endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the trip HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type tripResponse struct {
	ID           string    `json:"tripId"`
	PassengerID  string    `json:"passengerId"`
	RouteID      string    `json:"routeId"`
	BusID        string    `json:"busId"`
	StartStation string    `json:"startStation"`
	EndStation   string    `json:"endStation"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toResponse(t Trip) tripResponse {
	return tripResponse{
		ID:           t.ID,
		PassengerID:  t.PassengerID,
		RouteID:      t.RouteID,
		BusID:        t.BusID,
		StartStation: t.StartStation,
		EndStation:   t.EndStation,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toResponses(trips []Trip) []tripResponse {
	out := make([]tripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, toResponse(t))
	}
	return out
}

type bookRequest struct {
	PassengerID  string `json:"passengerId"`
	RouteID      string `json:"routeId"`
	BusID        string `json:"busId"`
	StartStation string `json:"startStation"`
	EndStation   string `json:"endStation"`
}

type updateRequest struct {
	StartStation *string `json:"startStation"`
	EndStation   *string `json:"endStation"`
	Status       *string `json:"status"`
}

// Book creates a trip for the authenticated passenger. Admins may book on
// behalf of another passenger by setting passengerId.
func (h *Handler) Book(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	passengerID := p.UserID
	if req.PassengerID != "" && req.PassengerID != p.UserID {
		if !p.HasRole(identity.RoleAdmin) {
			return apperr.Forbidden("Access denied: insufficient permissions")
		}
		passengerID = req.PassengerID
	}
	t, err := h.svc.Create(c.UserContext(), CreateInput{
		PassengerID:  passengerID,
		RouteID:      req.RouteID,
		BusID:        req.BusID,
		StartStation: req.StartStation,
		EndStation:   req.EndStation,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(t))
}

// List returns every trip. Admin surface.
func (h *Handler) List(c *fiber.Ctx) error {
	trips, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(toResponses(trips))
}

// Mine returns the authenticated passenger's trips, newest first.
func (h *Handler) Mine(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	trips, err := h.svc.ListForPassenger(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toResponses(trips))
}

// Get returns one trip. Passengers only see their own.
func (h *Handler) Get(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	t, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if !p.HasRole(identity.RoleAdmin, identity.RoleDriver) && t.PassengerID != p.UserID {
		return apperr.Forbidden("Access denied: insufficient permissions")
	}
	return c.JSON(toResponse(t))
}

// Update applies field overrides to a trip. Admin surface.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	t, err := h.svc.Update(c.UserContext(), c.Params("id"), UpdateInput{
		StartStation: req.StartStation,
		EndStation:   req.EndStation,
		Status:       req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(toResponse(t))
}

// Cancel cancels a trip. Passengers cancel their own; admins cancel any.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	owner := p.UserID
	if p.HasRole(identity.RoleAdmin) {
		owner = ""
	}
	t, err := h.svc.Cancel(c.UserContext(), c.Params("id"), owner)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(t))
}

// Delete removes a trip. Admin surface.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Trip deleted successfully"})
}
