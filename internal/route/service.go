package route

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/bus"
)

// BusDirectory is the slice of the bus domain the route service needs.
type BusDirectory interface {
	Get(ctx context.Context, id string) (bus.Bus, error)
	Update(ctx context.Context, id string, input bus.UpdateInput) (bus.Bus, error)
}

// Service manages transit routes and their bus associations.
type Service struct {
	repo  Repository
	buses BusDirectory
}

// NewService builds a route service instance.
func NewService(repo Repository, buses BusDirectory) *Service {
	return &Service{repo: repo, buses: buses}
}

// CreateInput captures data required to create a route.
type CreateInput struct {
	Code         string
	StartStation string
	EndStation   string
	DistanceKM   float64
}

func (s *Service) Create(ctx context.Context, input CreateInput) (Route, error) {
	start := strings.TrimSpace(input.StartStation)
	end := strings.TrimSpace(input.EndStation)
	if start == "" {
		return Route{}, apperr.Validation("startStation is required and cannot be empty")
	}
	if end == "" {
		return Route{}, apperr.Validation("endStation is required and cannot be empty")
	}
	if input.DistanceKM < 0 {
		return Route{}, apperr.Validation("distanceKm cannot be negative")
	}

	route := Route{
		ID:           uuid.New().String(),
		Code:         strings.TrimSpace(input.Code),
		StartStation: start,
		EndStation:   end,
		DistanceKM:   input.DistanceKM,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, route); err != nil {
		return Route{}, err
	}
	return route, nil
}

func (s *Service) Get(ctx context.Context, id string) (Route, error) {
	route, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Route{}, apperr.NotFound("Route not found with ID: " + id)
	}
	return route, err
}

func (s *Service) List(ctx context.Context) ([]Route, error) {
	return s.repo.List(ctx)
}

// RoutesForBus returns the routes a bus is attached to.
func (s *Service) RoutesForBus(ctx context.Context, busID string) ([]Route, error) {
	return s.repo.ListByBus(ctx, busID)
}

// UpdateInput carries optional overrides for route mutation.
type UpdateInput struct {
	Code         *string
	StartStation *string
	EndStation   *string
	DistanceKM   *float64
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Route, error) {
	route, err := s.Get(ctx, id)
	if err != nil {
		return Route{}, err
	}
	if input.Code != nil {
		route.Code = strings.TrimSpace(*input.Code)
	}
	if input.StartStation != nil {
		if v := strings.TrimSpace(*input.StartStation); v != "" {
			route.StartStation = v
		}
	}
	if input.EndStation != nil {
		if v := strings.TrimSpace(*input.EndStation); v != "" {
			route.EndStation = v
		}
	}
	if input.DistanceKM != nil {
		if *input.DistanceKM < 0 {
			return Route{}, apperr.Validation("distanceKm cannot be negative")
		}
		route.DistanceKM = *input.DistanceKM
	}
	if err := s.repo.Update(ctx, route); err != nil {
		return Route{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Route not found with ID: " + id)
		}
		return err
	}
	return nil
}

// AttachBus links a bus to the route and stamps the bus with the route's
// description.
func (s *Service) AttachBus(ctx context.Context, routeID, busID string) (Route, error) {
	route, err := s.Get(ctx, routeID)
	if err != nil {
		return Route{}, err
	}
	if _, err := s.buses.Get(ctx, busID); err != nil {
		return Route{}, err
	}
	if err := s.repo.AttachBus(ctx, routeID, busID); err != nil {
		return Route{}, err
	}
	desc := route.Description()
	if _, err := s.buses.Update(ctx, busID, bus.UpdateInput{RouteDesc: &desc}); err != nil {
		return Route{}, err
	}
	return s.Get(ctx, routeID)
}

// DetachBus unlinks a bus from the route.
func (s *Service) DetachBus(ctx context.Context, routeID, busID string) (Route, error) {
	if _, err := s.Get(ctx, routeID); err != nil {
		return Route{}, err
	}
	if err := s.repo.DetachBus(ctx, routeID, busID); err != nil {
		return Route{}, err
	}
	return s.Get(ctx, routeID)
}
