package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetwatch/internal/domain"
)

// UsersRepo owns the raw user collection.
type UsersRepo interface {
	Snapshot(ctx context.Context) []domain.User
	Get(ctx context.Context, userID string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, userID string, patch map[string]any) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

// MemoryUsersRepo keeps users in a map guarded by RWMutex.
type MemoryUsersRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{users: map[string]domain.User{}}
}

func (r *MemoryUsersRepo) Snapshot(_ context.Context) []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (r *MemoryUsersRepo) Get(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsersRepo) Create(_ context.Context, user domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = domain.RoleViewer
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.UserID] = user
	return &user, nil
}

func (r *MemoryUsersRepo) Update(_ context.Context, userID string, patch map[string]any) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if v, ok := patch["name"].(string); ok && v != "" {
		u.Name = v
	}
	if v, ok := patch["email"].(string); ok && v != "" {
		u.Email = v
	}
	if v, ok := patch["role"].(string); ok && v != "" {
		u.Role = v
	}
	if v, ok := patch["status"].(string); ok && v != "" {
		u.Status = v
	}
	// JSON 解码出来的数组是 []any，进程内调用传 []string，两者都接受
	switch sites := patch["assigned_sites"].(type) {
	case []string:
		u.AssignedSites = sites
	case []any:
		out := make([]string, 0, len(sites))
		for _, s := range sites {
			if id, ok := s.(string); ok {
				out = append(out, id)
			}
		}
		u.AssignedSites = out
	}
	r.users[userID] = u
	return &u, nil
}

func (r *MemoryUsersRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return ErrNotFound
	}
	delete(r.users, userID)
	return nil
}
