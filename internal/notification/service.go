package notification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/movesmart/transit/internal/apperr"
)

// Service manages notifications. It doubles as the notifier other domains
// use to tell users about events (trip booked, bus assigned).
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a notification service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateInput captures data for a new notification. An empty UserID makes
// the notification system-wide.
type CreateInput struct {
	UserID  string
	Title   string
	Message string
	Type    string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Notification, error) {
	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	if title == "" {
		return Notification{}, apperr.Validation("title is required and cannot be empty")
	}
	if message == "" {
		return Notification{}, apperr.Validation("message is required and cannot be empty")
	}

	n := Notification{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Title:     title,
		Message:   message,
		Type:      ParseType(input.Type),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Notify creates a notification for one user, logging but not failing the
// caller's operation when persistence fails (best effort).
func (s *Service) Notify(ctx context.Context, userID, title, message string, typ Type) {
	_, err := s.Create(ctx, CreateInput{UserID: userID, Title: title, Message: message, Type: string(typ)})
	if err != nil && s.logger != nil {
		s.logger.Warn("notification delivery failed", "user_id", userID, "title", title, "error", err)
	}
}

// ListForUser returns the user's notifications plus system-wide ones.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListForUser(ctx, userID, false)
}

// ListUnread returns unread notifications for the user.
func (s *Service) ListUnread(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListForUser(ctx, userID, true)
}

// CountUnread returns the number of unread notifications for the user.
func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	unread, err := s.repo.ListForUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkRead marks one notification read. A user can only mark their own or
// system-wide notifications.
func (s *Service) MarkRead(ctx context.Context, id, userID string) (Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Notification{}, apperr.NotFound("Notification not found with ID: " + id)
		}
		return Notification{}, err
	}
	if n.UserID != "" && n.UserID != userID {
		return Notification{}, apperr.Forbidden("Access denied: insufficient permissions")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return Notification{}, err
	}
	n.Read = true
	return n, nil
}

// MarkAllRead marks every notification visible to the user as read and
// returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
