package notification

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
)

// Handler exposes notification endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the notification HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type notificationResponse struct {
	ID        string    `json:"notificationId"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func toResponses(notifications []Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toResponse(n))
	}
	return out
}

type createRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Create sends a notification to one user, or to everyone when userId is
// empty. Admin surface.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body format").WithCause(err)
	}
	n, err := h.svc.Create(c.UserContext(), CreateInput{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(toResponse(n))
}

// Mine returns the authenticated user's notifications, system-wide included.
func (h *Handler) Mine(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	notifications, err := h.svc.ListForUser(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toResponses(notifications))
}

// Unread returns the authenticated user's unread notifications.
func (h *Handler) Unread(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	notifications, err := h.svc.ListUnread(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toResponses(notifications))
}

// UnreadCount returns how many unread notifications the user has.
func (h *Handler) UnreadCount(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	count, err := h.svc.CountUnread(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"unreadCount": count})
}

// MarkRead marks one notification read, checking ownership.
func (h *Handler) MarkRead(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	n, err := h.svc.MarkRead(c.UserContext(), c.Params("id"), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toResponse(n))
}

// MarkAllRead marks everything visible to the user read.
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	p, ok := identity.FromContext(c.UserContext())
	if !ok {
		return apperr.Unauthorized("Authentication required")
	}
	marked, err := h.svc.MarkAllRead(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read", "marked": marked})
}
