package user

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
)

// Handler exposes user management and profile endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the user HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type userResponse struct {
	ID        string    `json:"userId"`
	Name      string    `json:"userName"`
	Email     string    `json:"userEmail,omitempty"`
	Phone     string    `json:"userPhoneNumber"`
	Role      string    `json:"userRole"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func toResponses(users []User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return out
}

type createRequest struct {
	UserName        string `json:"userName"`
	UserEmail       string `json:"userEmail"`
	UserPhoneNumber string `json:"userPhoneNumber"`
	UserPassword    string `json:"userPassword"`
	UserRole        string `json:"userRole"`
}

type updateRequest struct {
	UserName        *string `json:"userName"`
	UserEmail       *string `json:"userEmail"`
	UserPhoneNumber *string `json:"userPhoneNumber"`
	UserPassword    *string `json:"userPassword"`
	UserRole        *string `json:"userRole"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Create registers a user with an explicit role. Admin surface.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	u, err := h.svc.Create(c.UserContext(), CreateInput{
		Name:     req.UserName,
		Email:    req.UserEmail,
		Phone:    req.UserPhoneNumber,
		Password: req.UserPassword,
		Role:     identity.Role(req.UserRole),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(u))
}

// List returns every user.
func (h *Handler) List(c *fiber.Ctx) error {
	users, err := h.svc.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(toResponses(users))
}

func (h *Handler) listByRole(c *fiber.Ctx, role identity.Role) error {
	users, err := h.svc.ListByRole(c.UserContext(), role)
	if err != nil {
		return err
	}
	return c.JSON(toResponses(users))
}

// ListDrivers returns every DRIVER account.
func (h *Handler) ListDrivers(c *fiber.Ctx) error {
	return h.listByRole(c, identity.RoleDriver)
}

// ListPassengers returns every PASSENGER account.
func (h *Handler) ListPassengers(c *fiber.Ctx) error {
	return h.listByRole(c, identity.RolePassenger)
}

// ListAdmins returns every ADMIN account.
func (h *Handler) ListAdmins(c *fiber.Ctx) error {
	return h.listByRole(c, identity.RoleAdmin)
}

// Get returns one user by ID.
func (h *Handler) Get(c *fiber.Ctx) error {
	u, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toResponse(u))
}

// Update applies field overrides to a user. Admin surface.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	u, err := h.svc.Update(c.UserContext(), c.Params("id"), UpdateInput{
		Name:     req.UserName,
		Email:    req.UserEmail,
		Phone:    req.UserPhoneNumber,
		Password: req.UserPassword,
		Role:     req.UserRole,
	})
	if err != nil {
		return err
	}
	return c.JSON(toResponse(u))
}

// Delete removes a user, clearing any bus assignment first.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	u, err := h.svc.Get(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(u))
}

// UpdateMe lets the authenticated user change name, email, and phone. Role
// and password are out of reach here.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	u, err := h.svc.UpdateProfile(c.UserContext(), p.UserID, req.UserName, req.UserEmail, req.UserPhoneNumber)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(u))
}

// ChangePassword verifies the current password and stores a new one.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	if _, err := h.svc.ChangePassword(c.UserContext(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
