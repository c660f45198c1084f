package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/user"
)

// Handler exposes login and registration endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	UserName        string `json:"userName"`
	UserEmail       string `json:"userEmail"`
	UserPhoneNumber string `json:"userPhoneNumber"`
	UserPassword    string `json:"userPassword"`
	UserRole        string `json:"userRole"`
	BusPlateNumber  string `json:"busPlateNumber"`
}

type loginRequest struct {
	UserEmail    string `json:"userEmail"`
	UserPassword string `json:"userPassword"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	Role      string `json:"role"`
}

func (r registerRequest) input() RegisterInput {
	return RegisterInput{
		Name:     r.UserName,
		Email:    r.UserEmail,
		Phone:    r.UserPhoneNumber,
		Password: r.UserPassword,
		Role:     r.UserRole,
	}
}

func respond(c *fiber.Ctx, u user.User, token TokenResult) error {
	return c.Status(http.StatusOK).JSON(authResponse{Token: token.Token, ExpiresIn: token.ExpiresIn, Role: string(u.Role)})
}

// Register creates an account with the requested (non-admin) role.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	u, token, err := h.svc.Register(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return respond(c, u, token)
}

// RegisterPassenger creates a PASSENGER account.
func (h *Handler) RegisterPassenger(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	req.UserRole = string(identity.RolePassenger)
	u, token, err := h.svc.Register(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return respond(c, u, token)
}

// RegisterUser creates a USER account.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	req.UserRole = string(identity.RoleUser)
	u, token, err := h.svc.Register(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return respond(c, u, token)
}

// RegisterDriver creates a DRIVER account bound to an unassigned bus.
func (h *Handler) RegisterDriver(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	u, token, err := h.svc.RegisterDriver(c.UserContext(), req.input(), req.BusPlateNumber)
	if err != nil {
		return err
	}
	return respond(c, u, token)
}

// RegisterAdmin creates an ADMIN account through the privileged endpoint.
func (h *Handler) RegisterAdmin(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	u, token, err := h.svc.RegisterAdmin(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return respond(c, u, token)
}

// Login authenticates an identifier/password pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	u, token, err := h.svc.Login(c.UserContext(), req.UserEmail, req.UserPassword)
	if err != nil {
		return err
	}
	return respond(c, u, token)
}
