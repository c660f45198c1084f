package location

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu         sync.RWMutex
	buses      map[string][]BusLocation
	passengers map[string][]PassengerLocation
}

// NewMemoryRepository builds an in-memory location store. Fixes are kept
// newest first.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		buses:      make(map[string][]BusLocation),
		passengers: make(map[string][]PassengerLocation),
	}
}

func (r *memoryRepository) CreateBusLocation(_ context.Context, loc BusLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buses[loc.BusID] = append([]BusLocation{loc}, r.buses[loc.BusID]...)
	return nil
}

func (r *memoryRepository) LatestBusLocation(_ context.Context, busID string) (BusLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fixes := r.buses[busID]
	if len(fixes) == 0 {
		return BusLocation{}, ErrNotFound
	}
	return fixes[0], nil
}

func (r *memoryRepository) BusHistory(_ context.Context, busID string, limit int) ([]BusLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fixes := r.buses[busID]
	if limit > 0 && len(fixes) > limit {
		fixes = fixes[:limit]
	}
	out := make([]BusLocation, len(fixes))
	copy(out, fixes)
	return out, nil
}

func (r *memoryRepository) CreatePassengerLocation(_ context.Context, loc PassengerLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passengers[loc.PassengerID] = append([]PassengerLocation{loc}, r.passengers[loc.PassengerID]...)
	return nil
}

func (r *memoryRepository) LatestPassengerLocation(_ context.Context, passengerID string) (PassengerLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fixes := r.passengers[passengerID]
	if len(fixes) == 0 {
		return PassengerLocation{}, ErrNotFound
	}
	return fixes[0], nil
}

func (r *memoryRepository) PassengerHistory(_ context.Context, passengerID string, limit int) ([]PassengerLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fixes := r.passengers[passengerID]
	if limit > 0 && len(fixes) > limit {
		fixes = fixes[:limit]
	}
	out := make([]PassengerLocation, len(fixes))
	copy(out, fixes)
	return out, nil
}
