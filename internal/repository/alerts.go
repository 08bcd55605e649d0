package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fleetwatch/internal/domain"
)

// AlertsRepo owns the raw alert collection. Alerts are created by the
// seed (and by devices in a real deployment); the API only transitions
// their status.
type AlertsRepo interface {
	Snapshot(ctx context.Context) []domain.Alert
	Get(ctx context.Context, alertID string) (*domain.Alert, error)
	Create(ctx context.Context, alert domain.Alert) (*domain.Alert, error)
	SetStatus(ctx context.Context, alertID, status string) (*domain.Alert, error)
}

// MemoryAlertsRepo keeps alerts in a map guarded by RWMutex.
// Status transitions are not validated against the nominal
// active -> acknowledged -> resolved order.
type MemoryAlertsRepo struct {
	mu     sync.RWMutex
	alerts map[string]domain.Alert
}

func NewMemoryAlertsRepo() *MemoryAlertsRepo {
	return &MemoryAlertsRepo{alerts: map[string]domain.Alert{}}
}

func (r *MemoryAlertsRepo) Snapshot(_ context.Context) []domain.Alert {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].AlertID < out[j].AlertID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (r *MemoryAlertsRepo) Get(_ context.Context, alertID string) (*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.alerts[alertID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *MemoryAlertsRepo) Create(_ context.Context, alert domain.Alert) (*domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if alert.AlertID == "" {
		alert.AlertID = uuid.NewString()
	}
	if alert.Status == "" {
		alert.Status = domain.AlertStatusActive
	}
	r.alerts[alert.AlertID] = alert
	return &alert, nil
}

func (r *MemoryAlertsRepo) SetStatus(_ context.Context, alertID, status string) (*domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[alertID]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	r.alerts[alertID] = a
	return &a, nil
}
