package bus

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	buses map[string]Bus
}

// NewMemoryRepository builds an in-memory bus store for dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{buses: make(map[string]Bus)}
}

func (r *memoryRepository) Create(_ context.Context, bus Bus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buses[bus.ID] = bus
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bus, ok := r.buses[id]
	if !ok {
		return Bus{}, ErrNotFound
	}
	return bus, nil
}

func (r *memoryRepository) GetByPlate(_ context.Context, plate string) (Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, bus := range r.buses {
		if bus.PlateNumber == plate {
			return bus, nil
		}
	}
	return Bus{}, ErrNotFound
}

func (r *memoryRepository) List(_ context.Context) ([]Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	buses := make([]Bus, 0, len(r.buses))
	for _, bus := range r.buses {
		buses = append(buses, bus)
	}
	sortBuses(buses)
	return buses, nil
}

func (r *memoryRepository) ListByDriver(_ context.Context, driverID string) ([]Bus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var buses []Bus
	for _, bus := range r.buses {
		if bus.DriverID != "" && bus.DriverID == driverID {
			buses = append(buses, bus)
		}
	}
	sortBuses(buses)
	return buses, nil
}

func (r *memoryRepository) Update(_ context.Context, bus Bus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.buses[bus.ID]
	if !ok {
		return ErrNotFound
	}
	// Driver reference is only mutated through AssignDriver/UnassignDriver.
	bus.DriverID = existing.DriverID
	r.buses[bus.ID] = bus
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buses[id]; !ok {
		return ErrNotFound
	}
	delete(r.buses, id)
	return nil
}

func (r *memoryRepository) AssignDriver(_ context.Context, busID, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.buses[busID]
	if !ok {
		return ErrNotFound
	}
	for id, bus := range r.buses {
		if bus.DriverID == driverID && id != busID {
			bus.DriverID = ""
			r.buses[id] = bus
		}
	}
	target.DriverID = driverID
	r.buses[busID] = target
	return nil
}

func (r *memoryRepository) UnassignDriver(_ context.Context, driverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared int64
	for id, bus := range r.buses {
		if bus.DriverID != "" && bus.DriverID == driverID {
			bus.DriverID = ""
			r.buses[id] = bus
			cleared++
		}
	}
	return cleared, nil
}

func sortBuses(buses []Bus) {
	sort.Slice(buses, func(i, j int) bool {
		if buses[i].CreatedAt.Equal(buses[j].CreatedAt) {
			return buses[i].ID < buses[j].ID
		}
		return buses[i].CreatedAt.Before(buses[j].CreatedAt)
	})
}
