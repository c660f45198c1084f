package bus

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/identity"
	"github.com/movesmart/transit/internal/user"
)

// UserDirectory is the slice of the user domain the bus service needs:
// resolving a user so the driver role can be checked before assignment.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (user.User, error)
}

// Service manages the fleet and enforces the driver assignment invariant:
// a driver is referenced by at most one bus at any instant. Assignments are
// always re-read from the repository, never cached.
type Service struct {
	repo  Repository
	users UserDirectory
}

// NewService builds a bus service instance.
func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// CreateInput captures data required to create a bus.
type CreateInput struct {
	PlateNumber    string
	Capacity       int
	RouteDesc      string
	OrganizationID string
}

// Create registers a new bus with a unique plate number and no driver.
func (s *Service) Create(ctx context.Context, input CreateInput) (Bus, error) {
	plate := strings.TrimSpace(input.PlateNumber)
	if plate == "" {
		return Bus{}, apperr.Validation("plateNumber is required and cannot be empty")
	}
	if input.Capacity < 0 {
		return Bus{}, apperr.Validation("capacity cannot be negative")
	}
	if _, err := s.repo.GetByPlate(ctx, plate); err == nil {
		return Bus{}, apperr.Validation("Bus already registered with plate number: " + plate)
	} else if !errors.Is(err, ErrNotFound) {
		return Bus{}, err
	}

	b := Bus{
		ID:             uuid.New().String(),
		PlateNumber:    plate,
		Capacity:       input.Capacity,
		RouteDesc:      strings.TrimSpace(input.RouteDesc),
		OrganizationID: input.OrganizationID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Bus{}, err
	}
	return b, nil
}

// Get fetches a bus by ID.
func (s *Service) Get(ctx context.Context, id string) (Bus, error) {
	b, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Bus{}, apperr.NotFound("Bus not found with ID: " + id)
	}
	return b, err
}

// GetByPlate fetches a bus by plate number.
func (s *Service) GetByPlate(ctx context.Context, plate string) (Bus, error) {
	b, err := s.repo.GetByPlate(ctx, plate)
	if errors.Is(err, ErrNotFound) {
		return Bus{}, apperr.NotFound("Bus not found with plate number: " + plate)
	}
	return b, err
}

// List returns every bus.
func (s *Service) List(ctx context.Context) ([]Bus, error) {
	return s.repo.List(ctx)
}

// BusForDriver returns the bus currently assigned to the driver.
func (s *Service) BusForDriver(ctx context.Context, driverID string) (Bus, error) {
	buses, err := s.repo.ListByDriver(ctx, driverID)
	if err != nil {
		return Bus{}, err
	}
	if len(buses) == 0 {
		return Bus{}, apperr.NotFound("No bus assigned to this driver")
	}
	return buses[0], nil
}

// UpdateInput carries optional overrides for bus mutation.
type UpdateInput struct {
	PlateNumber *string
	Capacity    *int
	RouteDesc   *string
}

// Update applies field overrides to a stored bus. The driver reference is
// untouched; it only changes through AssignDriver/UnassignDriver.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (Bus, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Bus{}, err
	}

	updated := existing
	if input.PlateNumber != nil {
		plate := strings.TrimSpace(*input.PlateNumber)
		if plate == "" {
			return Bus{}, apperr.Validation("plateNumber cannot be empty")
		}
		if plate != existing.PlateNumber {
			if other, err := s.repo.GetByPlate(ctx, plate); err == nil && other.ID != existing.ID {
				return Bus{}, apperr.Validation("Bus already registered with plate number: " + plate)
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return Bus{}, err
			}
		}
		updated.PlateNumber = plate
	}
	if input.Capacity != nil {
		if *input.Capacity < 0 {
			return Bus{}, apperr.Validation("capacity cannot be negative")
		}
		updated.Capacity = *input.Capacity
	}
	if input.RouteDesc != nil {
		updated.RouteDesc = strings.TrimSpace(*input.RouteDesc)
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return Bus{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a bus.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Bus not found with ID: " + id)
		}
		return err
	}
	return nil
}

// AssignDriver attaches a driver to a bus. The driver is implicitly stolen
// from any bus that currently references them; the clear and the set happen
// in one atomic repository operation.
func (s *Service) AssignDriver(ctx context.Context, busID, driverID string) (Bus, error) {
	driver, err := s.users.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Bus{}, apperr.NotFound("User not found with ID: " + driverID)
		}
		return Bus{}, err
	}
	if driver.Role != identity.RoleDriver {
		return Bus{}, apperr.Validation("User is not a driver. Only drivers can be assigned to buses.")
	}

	if err := s.repo.AssignDriver(ctx, busID, driver.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Bus{}, apperr.NotFound("Bus not found with ID: " + busID)
		}
		return Bus{}, err
	}
	return s.Get(ctx, busID)
}

// AssignDriverByPlate attaches a driver to the bus with the given plate.
func (s *Service) AssignDriverByPlate(ctx context.Context, plate, driverID string) (Bus, error) {
	b, err := s.GetByPlate(ctx, plate)
	if err != nil {
		return Bus{}, err
	}
	return s.AssignDriver(ctx, b.ID, driverID)
}

// UnassignDriver detaches a driver from every bus referencing them and
// returns how many buses were cleared. "Not a driver" and "driver has no
// bus" are distinct validation failures.
func (s *Service) UnassignDriver(ctx context.Context, driverID string) (int64, error) {
	driver, err := s.users.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return 0, apperr.NotFound("User not found with ID: " + driverID)
		}
		return 0, err
	}
	if driver.Role != identity.RoleDriver {
		return 0, apperr.Validation("User is not a driver. Only drivers can be unassigned from buses.")
	}

	cleared, err := s.repo.UnassignDriver(ctx, driver.ID)
	if err != nil {
		return 0, err
	}
	if cleared == 0 {
		return 0, apperr.Validation("Driver is not assigned to any bus.")
	}
	return cleared, nil
}
