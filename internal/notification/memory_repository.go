package notification

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu            sync.RWMutex
	notifications map[string]Notification
}

// NewMemoryRepository builds an in-memory notification store.
func NewMemoryRepository() Repository {
	return &memoryRepository{notifications: make(map[string]Notification)}
}

func (r *memoryRepository) Create(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[n.ID] = n
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifications[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

func (r *memoryRepository) ListForUser(_ context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Notification
	for _, n := range r.notifications {
		if n.UserID != "" && n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	r.notifications[id] = n
	return nil
}

func (r *memoryRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var marked int64
	for id, n := range r.notifications {
		if n.Read {
			continue
		}
		if n.UserID != "" && n.UserID != userID {
			continue
		}
		n.Read = true
		r.notifications[id] = n
		marked++
	}
	return marked, nil
}
