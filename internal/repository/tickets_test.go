package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetwatch/internal/domain"
)

func TestTickets_SetStatusRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketsRepo()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, domain.Ticket{
		TicketID: "tkt-1", Title: "Camera offline", DeviceID: "dev-1",
		Status: domain.TicketStatusOpen, CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, err)

	later := created.Add(3 * time.Hour)
	updated, err := repo.SetStatus(ctx, "tkt-1", domain.TicketStatusInProgress, later)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, created, updated.CreatedAt)

	_, err = repo.SetStatus(ctx, "tkt-missing", domain.TicketStatusClosed, later)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTickets_AddCommentRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketsRepo()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, domain.Ticket{
		TicketID: "tkt-1", Title: "Flicker", DeviceID: "dev-1",
		Status: domain.TicketStatusOpen, CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, err)

	later := created.Add(time.Hour)
	updated, err := repo.AddComment(ctx, "tkt-1", domain.TicketComment{Author: "Dev Prasad", Text: "Checked on site."}, later)
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.NotEmpty(t, updated.Comments[0].CommentID)
	assert.Equal(t, later, updated.Comments[0].CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
}

func TestTickets_SnapshotNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketsRepo()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"tkt-a", "tkt-b", "tkt-c"} {
		_, err := repo.Create(ctx, domain.Ticket{
			TicketID: id, Title: id, DeviceID: "dev-1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	out := repo.Snapshot(ctx)
	require.Len(t, out, 3)
	assert.Equal(t, "tkt-c", out[0].TicketID)
	assert.Equal(t, "tkt-a", out[2].TicketID)
}

func TestTickets_ListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketsRepo()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		status := domain.TicketStatusOpen
		if i%2 == 1 {
			status = domain.TicketStatusResolved
		}
		_, err := repo.Create(ctx, domain.Ticket{
			Title: "t", DeviceID: "dev-1", Status: status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	open, total, err := repo.List(ctx, TicketFilters{Status: domain.TicketStatusOpen}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, open, 2)

	rest, total, err := repo.List(ctx, TicketFilters{Status: domain.TicketStatusOpen}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, rest, 1)
}
