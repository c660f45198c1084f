package trip

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	trips map[string]Trip
}

// NewMemoryRepository builds an in-memory trip store.
func NewMemoryRepository() Repository {
	return &memoryRepository{trips: make(map[string]Trip)}
}

func (r *memoryRepository) Create(_ context.Context, trip Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips[trip.ID] = trip
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[id]
	if !ok {
		return Trip{}, ErrNotFound
	}
	return t, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Trip, 0, len(r.trips))
	for _, t := range r.trips {
		out = append(out, t)
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *memoryRepository) ListByPassenger(_ context.Context, passengerID string) ([]Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Trip
	for _, t := range r.trips {
		if t.PassengerID == passengerID {
			out = append(out, t)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, trip Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[trip.ID]; !ok {
		return ErrNotFound
	}
	r.trips[trip.ID] = trip
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[id]; !ok {
		return ErrNotFound
	}
	delete(r.trips, id)
	return nil
}

func sortByCreatedAt(trips []Trip) {
	sort.Slice(trips, func(i, j int) bool { return trips[i].CreatedAt.After(trips[j].CreatedAt) })
}
