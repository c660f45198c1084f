package organization

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
)

// Handler exposes organization CRUD endpoints. Admin surface.
type Handler struct {
	svc *Service
}

// NewHandler builds the organization HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type organizationRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
}

type organizationResponse struct {
	ID            string    `json:"organizationId"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Email         string    `json:"email,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toResponse(org Organization) organizationResponse {
	return organizationResponse{
		ID:            org.ID,
		Name:          org.Name,
		Address:       org.Address,
		ContactNumber: org.ContactNumber,
		Email:         org.Email,
		CreatedAt:     org.CreatedAt,
	}
}

func (r organizationRequest) input() CreateInput {
	return CreateInput{
		Name:          r.Name,
		Address:       r.Address,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
	}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req organizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	org, err := h.svc.Create(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(org))
}

func (h *Handler) List(c *fiber.Ctx) error {
	orgs, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]organizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, toResponse(org))
	}
	return c.JSON(out)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	org, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(org))
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req organizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	org, err := h.svc.Update(c.UserContext(), c.Params("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(toResponse(org))
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Organization deleted successfully"})
}
