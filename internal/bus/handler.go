package bus

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
)

// Handler exposes fleet management endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the bus HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type busResponse struct {
	ID             string    `json:"busId"`
	PlateNumber    string    `json:"plateNumber"`
	Capacity       int       `json:"capacity"`
	RouteDesc      string    `json:"routeDesc,omitempty"`
	OrganizationID string    `json:"organizationId,omitempty"`
	DriverID       string    `json:"driverId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toResponse(b Bus) busResponse {
	return busResponse{
		ID:             b.ID,
		PlateNumber:    b.PlateNumber,
		Capacity:       b.Capacity,
		RouteDesc:      b.RouteDesc,
		OrganizationID: b.OrganizationID,
		DriverID:       b.DriverID,
		CreatedAt:      b.CreatedAt,
	}
}

type createRequest struct {
	PlateNumber    string `json:"plateNumber"`
	Capacity       int    `json:"capacity"`
	RouteDesc      string `json:"routeDesc"`
	OrganizationID string `json:"organizationId"`
}

type updateRequest struct {
	PlateNumber *string `json:"plateNumber"`
	Capacity    *int    `json:"capacity"`
	RouteDesc   *string `json:"routeDesc"`
}

type assignRequest struct {
	BusID       string `json:"busId"`
	PlateNumber string `json:"plateNumber"`
	DriverID    string `json:"driverId"`
}

// Create registers a bus.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	b, err := h.svc.Create(c.UserContext(), CreateInput{
		PlateNumber:    req.PlateNumber,
		Capacity:       req.Capacity,
		RouteDesc:      req.RouteDesc,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(b))
}

// List returns every bus.
func (h *Handler) List(c *fiber.Ctx) error {
	buses, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]busResponse, 0, len(buses))
	for _, b := range buses {
		out = append(out, toResponse(b))
	}
	return c.JSON(out)
}

// Get returns one bus by ID.
func (h *Handler) Get(c *fiber.Ctx) error {
	b, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(b))
}

// GetByPlate returns one bus by plate number.
func (h *Handler) GetByPlate(c *fiber.Ctx) error {
	b, err := h.svc.GetByPlate(c.UserContext(), c.Params("plate"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(b))
}

// MyBus returns the bus assigned to the authenticated driver.
func (h *Handler) MyBus(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	b, err := h.svc.BusForDriver(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(b))
}

// Update applies field overrides to a bus.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	b, err := h.svc.Update(c.UserContext(), c.Params("id"), UpdateInput{
		PlateNumber: req.PlateNumber,
		Capacity:    req.Capacity,
		RouteDesc:   req.RouteDesc,
	})
	if err != nil {
		return err
	}
	return c.JSON(toResponse(b))
}

// Delete removes a bus.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Bus deleted successfully"})
}

// AssignDriver binds a driver to a bus, by bus ID or by plate number.
func (h *Handler) AssignDriver(c *fiber.Ctx) error {
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	if req.DriverID == "" {
		return apperr.Validation("driverId is required and cannot be empty")
	}
	var (
		b   Bus
		err error
	)
	switch {
	case req.BusID != "":
		b, err = h.svc.AssignDriver(c.UserContext(), req.BusID, req.DriverID)
	case req.PlateNumber != "":
		b, err = h.svc.AssignDriverByPlate(c.UserContext(), req.PlateNumber, req.DriverID)
	default:
		return apperr.Validation("one of busId or plateNumber is required")
	}
	if err != nil {
		return err
	}
	return c.JSON(toResponse(b))
}

// UnassignDriver clears every bus referencing the driver.
func (h *Handler) UnassignDriver(c *fiber.Ctx) error {
	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	if req.DriverID == "" {
		return apperr.Validation("driverId is required and cannot be empty")
	}
	cleared, err := h.svc.UnassignDriver(c.UserContext(), req.DriverID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Driver unassigned successfully", "busesCleared": cleared})
}
