package trip

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/bus"
	"github.com/movesmart/transit/internal/notification"
	"github.com/movesmart/transit/internal/route"
	"github.com/movesmart/transit/internal/user"
)

// PassengerDirectory resolves users referenced by trips.
type PassengerDirectory interface {
	Get(ctx context.Context, id string) (user.User, error)
}

// RouteDirectory resolves routes referenced by trips.
type RouteDirectory interface {
	Get(ctx context.Context, id string) (route.Route, error)
}

// BusDirectory resolves buses referenced by trips.
type BusDirectory interface {
	Get(ctx context.Context, id string) (bus.Bus, error)
}

// Notifier delivers user notifications. Delivery failures must not fail
// the booking.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string, typ notification.Type)
}

// Service implements trip booking and lifecycle management.
type Service struct {
	repo     Repository
	users    PassengerDirectory
	routes   RouteDirectory
	buses    BusDirectory
	notifier Notifier
}

// NewService wires a trip service. notifier may be nil.
func NewService(repo Repository, users PassengerDirectory, routes RouteDirectory, buses BusDirectory, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, routes: routes, buses: buses, notifier: notifier}
}

// CreateInput captures a booking request.
type CreateInput struct {
	PassengerID  string
	RouteID      string
	BusID        string
	StartStation string
	EndStation   string
}

// Create books a trip after verifying the passenger, route and bus exist.
func (s *Service) Create(ctx context.Context, input CreateInput) (Trip, error) {
	start := strings.TrimSpace(input.StartStation)
	end := strings.TrimSpace(input.EndStation)
	if start == "" {
		return Trip{}, apperr.Validation("startStation is required and cannot be empty")
	}
	if end == "" {
		return Trip{}, apperr.Validation("endStation is required and cannot be empty")
	}

	if _, err := s.users.Get(ctx, input.PassengerID); err != nil {
		return Trip{}, notFoundAs(err, "Passenger not found with ID: "+input.PassengerID)
	}
	r, err := s.routes.Get(ctx, input.RouteID)
	if err != nil {
		return Trip{}, notFoundAs(err, "Route not found with ID: "+input.RouteID)
	}
	if _, err := s.buses.Get(ctx, input.BusID); err != nil {
		return Trip{}, notFoundAs(err, "Bus not found with ID: "+input.BusID)
	}

	now := time.Now().UTC()
	t := Trip{
		ID:           uuid.New().String(),
		PassengerID:  input.PassengerID,
		RouteID:      input.RouteID,
		BusID:        input.BusID,
		StartStation: start,
		EndStation:   end,
		Status:       StatusBooked,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Trip{}, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, t.PassengerID, "Trip booked",
			"Your trip from "+start+" to "+end+" on route "+r.Code+" is booked.",
			notification.TypeSuccess)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (Trip, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Trip{}, apperr.NotFound("Trip not found with ID: " + id)
		}
		return Trip{}, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]Trip, error) {
	return s.repo.List(ctx)
}

// ListForPassenger returns the passenger's trip history, newest first.
func (s *Service) ListForPassenger(ctx context.Context, passengerID string) ([]Trip, error) {
	return s.repo.ListByPassenger(ctx, passengerID)
}

// CountByStatus tallies trips per status for dashboard summaries.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[Status]int, 4)
	for _, t := range trips {
		counts[t.Status]++
	}
	return counts, nil
}

// UpdateInput carries optional field overrides. Nil means keep current.
type UpdateInput struct {
	StartStation *string
	EndStation   *string
	Status       *string
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Trip, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if input.StartStation != nil {
		start := strings.TrimSpace(*input.StartStation)
		if start == "" {
			return Trip{}, apperr.Validation("startStation cannot be empty")
		}
		t.StartStation = start
	}
	if input.EndStation != nil {
		end := strings.TrimSpace(*input.EndStation)
		if end == "" {
			return Trip{}, apperr.Validation("endStation cannot be empty")
		}
		t.EndStation = end
	}
	if input.Status != nil {
		status, err := ParseStatus(*input.Status)
		if err != nil {
			return Trip{}, apperr.Validation(err.Error())
		}
		if err := checkTransition(t.Status, status); err != nil {
			return Trip{}, err
		}
		t.Status = status
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return Trip{}, err
	}
	return t, nil
}

// UpdateStatus moves the trip through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Trip, error) {
	return s.Update(ctx, id, UpdateInput{Status: &status})
}

// Cancel cancels the trip on behalf of its passenger. Admins may cancel any
// trip by passing an empty passengerID.
func (s *Service) Cancel(ctx context.Context, id, passengerID string) (Trip, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if passengerID != "" && t.PassengerID != passengerID {
		return Trip{}, apperr.Forbidden("Access denied: insufficient permissions")
	}
	cancelled := string(StatusCancelled)
	return s.Update(ctx, id, UpdateInput{Status: &cancelled})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Trip not found with ID: " + id)
		}
		return err
	}
	return nil
}

// checkTransition enforces the trip lifecycle. COMPLETED and CANCELLED are
// terminal.
func checkTransition(from, to Status) error {
	if from == to {
		return nil
	}
	allowed := map[Status][]Status{
		StatusBooked:  {StatusOngoing, StatusCancelled},
		StatusOngoing: {StatusCompleted, StatusCancelled},
	}
	for _, next := range allowed[from] {
		if next == to {
			return nil
		}
	}
	return apperr.Validation("Cannot change trip status from " + string(from) + " to " + string(to))
}

func notFoundAs(err error, message string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return apperr.NotFound(message)
	}
	return err
}
