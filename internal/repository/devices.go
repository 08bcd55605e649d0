package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetwatch/internal/domain"
)

// DeviceFilters are attribute filters applied as independent AND conditions.
type DeviceFilters struct {
	SiteID  string
	Type    string
	Status  string
	Keyword string // matched against name / ip / model
}

// DevicesRepo owns the raw device collection.
type DevicesRepo interface {
	Snapshot(ctx context.Context) []domain.Device
	List(ctx context.Context, filters DeviceFilters, page, size int) ([]domain.Device, int, error)
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
	Create(ctx context.Context, device domain.Device) (*domain.Device, error)
	Update(ctx context.Context, deviceID string, patch map[string]any) (*domain.Device, error)
	Delete(ctx context.Context, deviceID string) error
}

// MemoryDevicesRepo keeps devices in a map guarded by RWMutex.
// Deleting a device does not touch tickets/alerts referencing it.
type MemoryDevicesRepo struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
}

func NewMemoryDevicesRepo() *MemoryDevicesRepo {
	return &MemoryDevicesRepo{devices: map[string]domain.Device{}}
}

func (r *MemoryDevicesRepo) Snapshot(_ context.Context) []domain.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

func (r *MemoryDevicesRepo) List(ctx context.Context, filters DeviceFilters, page, size int) ([]domain.Device, int, error) {
	all := r.Snapshot(ctx)
	matched := make([]domain.Device, 0, len(all))
	for _, d := range all {
		if filters.SiteID != "" && d.SiteID != filters.SiteID {
			continue
		}
		if filters.Type != "" && d.Type != filters.Type {
			continue
		}
		if filters.Status != "" && d.Status != filters.Status {
			continue
		}
		if kw := strings.ToLower(strings.TrimSpace(filters.Keyword)); kw != "" {
			if !strings.Contains(strings.ToLower(d.Name), kw) &&
				!strings.Contains(strings.ToLower(d.IPAddress), kw) &&
				!strings.Contains(strings.ToLower(d.Model), kw) {
				continue
			}
		}
		matched = append(matched, d)
	}
	items, total := paginate(matched, page, size)
	return items, total, nil
}

func (r *MemoryDevicesRepo) Get(_ context.Context, deviceID string) (*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *MemoryDevicesRepo) Create(_ context.Context, device domain.Device) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if device.DeviceID == "" {
		device.DeviceID = uuid.NewString()
	}
	if device.Status == "" {
		device.Status = domain.DeviceStatusOffline
	}
	if device.Health == "" {
		device.Health = domain.DeviceHealthHealthy
	}
	if device.LastSeen.IsZero() {
		device.LastSeen = time.Now()
	}
	r.devices[device.DeviceID] = device
	return &device, nil
}

func (r *MemoryDevicesRepo) Update(_ context.Context, deviceID string, patch map[string]any) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	if v, ok := patch["name"].(string); ok && v != "" {
		d.Name = v
	}
	if v, ok := patch["site_id"].(string); ok && v != "" {
		d.SiteID = v
	}
	if v, ok := patch["status"].(string); ok && v != "" {
		d.Status = v
	}
	if v, ok := patch["health"].(string); ok && v != "" {
		d.Health = v
	}
	if v, ok := patch["recording"].(bool); ok {
		d.Recording = v
	}
	if v, ok := patch["ip_address"].(string); ok && v != "" {
		d.IPAddress = v
	}
	if v, ok := patch["firmware"].(string); ok && v != "" {
		d.Firmware = v
	}
	if v, ok := patch["hdd_status"].(string); ok && v != "" {
		d.HDDStatus = v
	}
	// 进程内调用传 time.Time，HTTP patch 传 RFC3339 字符串
	switch v := patch["last_seen"].(type) {
	case time.Time:
		if !v.IsZero() {
			d.LastSeen = v
		}
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			d.LastSeen = ts
		}
	}
	r.devices[deviceID] = d
	return &d, nil
}

func (r *MemoryDevicesRepo) Delete(_ context.Context, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[deviceID]; !ok {
		return ErrNotFound
	}
	delete(r.devices, deviceID)
	return nil
}
