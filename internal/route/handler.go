package route

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
)

// Handler exposes route management endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the route HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type routeResponse struct {
	ID           string    `json:"routeId"`
	Code         string    `json:"code"`
	StartStation string    `json:"startStation"`
	EndStation   string    `json:"endStation"`
	DistanceKM   float64   `json:"distanceKm"`
	BusIDs       []string  `json:"busIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toResponse(r Route) routeResponse {
	busIDs := r.BusIDs
	if busIDs == nil {
		busIDs = []string{}
	}
	return routeResponse{
		ID:           r.ID,
		Code:         r.Code,
		StartStation: r.StartStation,
		EndStation:   r.EndStation,
		DistanceKM:   r.DistanceKM,
		BusIDs:       busIDs,
		CreatedAt:    r.CreatedAt,
	}
}

type createRequest struct {
	Code         string  `json:"code"`
	StartStation string  `json:"startStation"`
	EndStation   string  `json:"endStation"`
	DistanceKM   float64 `json:"distanceKm"`
}

type updateRequest struct {
	Code         *string  `json:"code"`
	StartStation *string  `json:"startStation"`
	EndStation   *string  `json:"endStation"`
	DistanceKM   *float64 `json:"distanceKm"`
}

type attachRequest struct {
	BusID string `json:"busId"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	r, err := h.svc.Create(c.UserContext(), CreateInput{
		Code:         req.Code,
		StartStation: req.StartStation,
		EndStation:   req.EndStation,
		DistanceKM:   req.DistanceKM,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(r))
}

func (h *Handler) List(c *fiber.Ctx) error {
	routes, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]routeResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, toResponse(r))
	}
	return c.JSON(out)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	r, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(r))
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	r, err := h.svc.Update(c.UserContext(), c.Params("id"), UpdateInput{
		Code:         req.Code,
		StartStation: req.StartStation,
		EndStation:   req.EndStation,
		DistanceKM:   req.DistanceKM,
	})
	if err != nil {
		return err
	}
	return c.JSON(toResponse(r))
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Route deleted successfully"})
}

// AttachBus adds a bus to the route and stamps the route description on it.
func (h *Handler) AttachBus(c *fiber.Ctx) error {
	var req attachRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	if req.BusID == "" {
		return apperr.Validation("busId is required and cannot be empty")
	}
	r, err := h.svc.AttachBus(c.UserContext(), c.Params("id"), req.BusID)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(r))
}

// DetachBus removes a bus from the route.
func (h *Handler) DetachBus(c *fiber.Ctx) error {
	r, err := h.svc.DetachBus(c.UserContext(), c.Params("id"), c.Params("busId"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(r))
}
