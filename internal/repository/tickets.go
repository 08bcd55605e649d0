package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetwatch/internal/domain"
)

// TicketFilters are attribute filters applied as independent AND conditions.
type TicketFilters struct {
	Status   string
	Priority string
	DeviceID string
	Assignee string
}

// TicketsRepo owns the raw ticket collection.
type TicketsRepo interface {
	Snapshot(ctx context.Context) []domain.Ticket
	List(ctx context.Context, filters TicketFilters, page, size int) ([]domain.Ticket, int, error)
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)
	Create(ctx context.Context, ticket domain.Ticket) (*domain.Ticket, error)
	SetStatus(ctx context.Context, ticketID, status string, now time.Time) (*domain.Ticket, error)
	AddComment(ctx context.Context, ticketID string, comment domain.TicketComment, now time.Time) (*domain.Ticket, error)
	Delete(ctx context.Context, ticketID string) error
}

// MemoryTicketsRepo keeps tickets in a map guarded by RWMutex.
// Status and comment mutations always refresh UpdatedAt.
type MemoryTicketsRepo struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

func NewMemoryTicketsRepo() *MemoryTicketsRepo {
	return &MemoryTicketsRepo{tickets: map[string]domain.Ticket{}}
}

func (r *MemoryTicketsRepo) Snapshot(_ context.Context) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, t)
	}
	// newest first, stable for list pages
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TicketID < out[j].TicketID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryTicketsRepo) List(ctx context.Context, filters TicketFilters, page, size int) ([]domain.Ticket, int, error) {
	all := r.Snapshot(ctx)
	matched := make([]domain.Ticket, 0, len(all))
	for _, t := range all {
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if filters.Priority != "" && t.Priority != filters.Priority {
			continue
		}
		if filters.DeviceID != "" && t.DeviceID != filters.DeviceID {
			continue
		}
		if filters.Assignee != "" && t.Assignee != filters.Assignee {
			continue
		}
		matched = append(matched, t)
	}
	items, total := paginate(matched, page, size)
	return items, total, nil
}

func (r *MemoryTicketsRepo) Get(_ context.Context, ticketID string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryTicketsRepo) Create(_ context.Context, ticket domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.TicketID == "" {
		ticket.TicketID = uuid.NewString()
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = ticket.CreatedAt
	}
	r.tickets[ticket.TicketID] = ticket
	return &ticket, nil
}

func (r *MemoryTicketsRepo) SetStatus(_ context.Context, ticketID, status string, now time.Time) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = now
	r.tickets[ticketID] = t
	return &t, nil
}

func (r *MemoryTicketsRepo) AddComment(_ context.Context, ticketID string, comment domain.TicketComment, now time.Time) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	if comment.CommentID == "" {
		comment.CommentID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	t.Comments = append(t.Comments, comment)
	t.UpdatedAt = now
	r.tickets[ticketID] = t
	return &t, nil
}

func (r *MemoryTicketsRepo) Delete(_ context.Context, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticketID]; !ok {
		return ErrNotFound
	}
	delete(r.tickets, ticketID)
	return nil
}
