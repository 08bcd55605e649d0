package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fleetwatch/internal/domain"
)

// SitesRepo owns the raw site collection. Scoped views are derived
// elsewhere and never mutated.
type SitesRepo interface {
	Snapshot(ctx context.Context) []domain.Site
	Get(ctx context.Context, siteID string) (*domain.Site, error)
	Create(ctx context.Context, site domain.Site) (*domain.Site, error)
	Update(ctx context.Context, siteID string, patch map[string]any) (*domain.Site, error)
	Delete(ctx context.Context, siteID string) error
}

// MemorySitesRepo keeps sites in a map guarded by RWMutex.
type MemorySitesRepo struct {
	mu    sync.RWMutex
	sites map[string]domain.Site
}

func NewMemorySitesRepo() *MemorySitesRepo {
	return &MemorySitesRepo{sites: map[string]domain.Site{}}
}

func (r *MemorySitesRepo) Snapshot(_ context.Context) []domain.Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Site, 0, len(r.sites))
	for _, s := range r.sites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out
}

func (r *MemorySitesRepo) Get(_ context.Context, siteID string) (*domain.Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sites[siteID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySitesRepo) Create(_ context.Context, site domain.Site) (*domain.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if site.SiteID == "" {
		site.SiteID = uuid.NewString()
	}
	if site.Status == "" {
		site.Status = domain.SiteStatusActive
	}
	r.sites[site.SiteID] = site
	return &site, nil
}

func (r *MemorySitesRepo) Update(_ context.Context, siteID string, patch map[string]any) (*domain.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sites[siteID]
	if !ok {
		return nil, ErrNotFound
	}
	if v, ok := patch["name"].(string); ok && v != "" {
		s.Name = v
	}
	if v, ok := patch["address"].(string); ok && v != "" {
		s.Address = v
	}
	if v, ok := patch["city"].(string); ok && v != "" {
		s.City = v
	}
	if v, ok := patch["status"].(string); ok && v != "" {
		s.Status = v
	}
	r.sites[siteID] = s
	return &s, nil
}

func (r *MemorySitesRepo) Delete(_ context.Context, siteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sites[siteID]; !ok {
		return ErrNotFound
	}
	delete(r.sites, siteID)
	return nil
}
