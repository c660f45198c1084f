package route

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	routes map[string]Route
}

// NewMemoryRepository builds an in-memory route store for dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{routes: make(map[string]Route)}
}

func (r *memoryRepository) Create(_ context.Context, route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.ID] = route
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[id]
	if !ok {
		return Route{}, ErrNotFound
	}
	return cloneRoute(route), nil
}

func (r *memoryRepository) List(_ context.Context) ([]Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routes := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, cloneRoute(route))
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].CreatedAt.Before(routes[j].CreatedAt) })
	return routes, nil
}

func (r *memoryRepository) ListByBus(_ context.Context, busID string) ([]Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var routes []Route
	for _, route := range r.routes {
		for _, id := range route.BusIDs {
			if id == busID {
				routes = append(routes, cloneRoute(route))
				break
			}
		}
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].CreatedAt.Before(routes[j].CreatedAt) })
	return routes, nil
}

func (r *memoryRepository) Update(_ context.Context, route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.routes[route.ID]
	if !ok {
		return ErrNotFound
	}
	// Bus associations change only through AttachBus/DetachBus.
	route.BusIDs = existing.BusIDs
	r.routes[route.ID] = route
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[id]; !ok {
		return ErrNotFound
	}
	delete(r.routes, id)
	return nil
}

func (r *memoryRepository) AttachBus(_ context.Context, routeID, busID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[routeID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range route.BusIDs {
		if id == busID {
			return nil
		}
	}
	route.BusIDs = append(append([]string(nil), route.BusIDs...), busID)
	r.routes[routeID] = route
	return nil
}

func (r *memoryRepository) DetachBus(_ context.Context, routeID, busID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[routeID]
	if !ok {
		return ErrNotFound
	}
	kept := make([]string, 0, len(route.BusIDs))
	for _, id := range route.BusIDs {
		if id != busID {
			kept = append(kept, id)
		}
	}
	route.BusIDs = kept
	r.routes[routeID] = route
	return nil
}

func cloneRoute(route Route) Route {
	route.BusIDs = append([]string(nil), route.BusIDs...)
	return route
}
