package repository

import (
	"context"
	"sort"
	"sync"

	"fleetwatch/internal/domain"
)

// NotificationsRepo owns the raw notification collection. Notifications
// are installed once from alerts at seed time and never re-derived when
// alerts change afterwards.
type NotificationsRepo interface {
	Snapshot(ctx context.Context) []domain.Notification
	Install(ctx context.Context, items []domain.Notification)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, ids []string) int
}

// MemoryNotificationsRepo keeps notifications in a map guarded by RWMutex.
type MemoryNotificationsRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Notification
}

func NewMemoryNotificationsRepo() *MemoryNotificationsRepo {
	return &MemoryNotificationsRepo{items: map[string]domain.Notification{}}
}

func (r *MemoryNotificationsRepo) Snapshot(_ context.Context) []domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Notification, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].NotificationID < out[j].NotificationID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Install replaces the collection. Called exactly once by the seed.
func (r *MemoryNotificationsRepo) Install(_ context.Context, items []domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string]domain.Notification, len(items))
	for _, n := range items {
		r.items[n.NotificationID] = n
	}
}

func (r *MemoryNotificationsRepo) MarkRead(_ context.Context, notificationID string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[notificationID]
	if !ok {
		return nil, ErrNotFound
	}
	n.Read = true
	r.items[notificationID] = n
	return &n, nil
}

// MarkAllRead marks the given ids read and returns how many changed.
// The caller passes the ids visible to the current user so a viewer
// cannot mark notifications outside their site scope.
func (r *MemoryNotificationsRepo) MarkAllRead(_ context.Context, ids []string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for _, id := range ids {
		n, ok := r.items[id]
		if !ok || n.Read {
			continue
		}
		n.Read = true
		r.items[id] = n
		changed++
	}
	return changed
}
