package location

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/bus"
	"github.com/movesmart/transit/internal/metrics"
)

const defaultHistoryLimit = 100

// BusDirectory resolves buses referenced by location reports.
type BusDirectory interface {
	Get(ctx context.Context, id string) (bus.Bus, error)
}

// Service records and serves bus and passenger positions.
type Service struct {
	repo   Repository
	buses  BusDirectory
	cache  *Cache
	logger *slog.Logger
}

// NewService wires a location service. cache may be nil.
func NewService(repo Repository, buses BusDirectory, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, buses: buses, cache: cache, logger: logger}
}

// ReportBus records a position fix for a bus. reporterID identifies the
// principal making the report; drivers may only report for their own bus,
// which the caller checks via the bus lookup. Cache writes are best effort.
func (s *Service) ReportBus(ctx context.Context, busID string, lat, lng float64) (BusLocation, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return BusLocation{}, err
	}
	if _, err := s.buses.Get(ctx, busID); err != nil {
		return BusLocation{}, err
	}
	loc := BusLocation{
		ID:         uuid.New().String(),
		BusID:      busID,
		Latitude:   lat,
		Longitude:  lng,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateBusLocation(ctx, loc); err != nil {
		return BusLocation{}, err
	}
	metrics.LocationReports.WithLabelValues("bus").Inc()
	if err := s.cache.SetLatestBus(ctx, loc); err != nil && s.logger != nil {
		s.logger.Warn("bus location cache write failed", "bus_id", busID, "error", err)
	}
	return loc, nil
}

// LatestBus returns the most recent position for a bus, preferring the
// Redis cache over the repository.
func (s *Service) LatestBus(ctx context.Context, busID string) (BusLocation, error) {
	if loc, ok := s.cache.LatestBus(ctx, busID); ok {
		return loc, nil
	}
	loc, err := s.repo.LatestBusLocation(ctx, busID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return BusLocation{}, apperr.NotFound("No location recorded for bus with ID: " + busID)
		}
		return BusLocation{}, err
	}
	return loc, nil
}

func (s *Service) BusHistory(ctx context.Context, busID string, limit int) ([]BusLocation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.BusHistory(ctx, busID, limit)
}

// ReportPassenger records a position fix for a passenger. Passengers report
// only for themselves; the handler passes the principal's own ID.
func (s *Service) ReportPassenger(ctx context.Context, passengerID string, lat, lng float64) (PassengerLocation, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return PassengerLocation{}, err
	}
	loc := PassengerLocation{
		ID:          uuid.New().String(),
		PassengerID: passengerID,
		Latitude:    lat,
		Longitude:   lng,
		RecordedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreatePassengerLocation(ctx, loc); err != nil {
		return PassengerLocation{}, err
	}
	metrics.LocationReports.WithLabelValues("passenger").Inc()
	return loc, nil
}

func (s *Service) LatestPassenger(ctx context.Context, passengerID string) (PassengerLocation, error) {
	loc, err := s.repo.LatestPassengerLocation(ctx, passengerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PassengerLocation{}, apperr.NotFound("No location recorded for passenger with ID: " + passengerID)
		}
		return PassengerLocation{}, err
	}
	return loc, nil
}

func (s *Service) PassengerHistory(ctx context.Context, passengerID string, limit int) ([]PassengerLocation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.PassengerHistory(ctx, passengerID, limit)
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return apperr.Validation("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return apperr.Validation("longitude must be between -180 and 180")
	}
	return nil
}
