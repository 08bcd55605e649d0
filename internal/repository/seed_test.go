package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetwatch/internal/domain"
)

func seededRepos(t *testing.T) (context.Context, *Repos) {
	ctx := context.Background()
	repos := NewRepos()
	Seed(ctx, repos, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	return ctx, repos
}

func TestSeed_Counts(t *testing.T) {
	ctx, repos := seededRepos(t)

	assert.Len(t, repos.Sites.Snapshot(ctx), 5)
	assert.Len(t, repos.Devices.Snapshot(ctx), 13)
	assert.Len(t, repos.Users.Snapshot(ctx), 4)
	assert.Len(t, repos.Tickets.Snapshot(ctx), 4)
	assert.Len(t, repos.Alerts.Snapshot(ctx), 5)
	assert.Len(t, repos.Notifications.Snapshot(ctx), 5)
}

// 通知在播种时从告警派生一次，之后告警的变化不再同步过来
func TestSeed_NotificationsFrozenAtSeedTime(t *testing.T) {
	ctx, repos := seededRepos(t)

	_, err := repos.Alerts.SetStatus(ctx, "alr-001", domain.AlertStatusResolved)
	require.NoError(t, err)

	for _, n := range repos.Notifications.Snapshot(ctx) {
		if n.AlertID != "alr-001" {
			continue
		}
		assert.False(t, n.Read)
		assert.Equal(t, "Aisle Cam 3 connection lost", n.Message)
		return
	}
	t.Fatal("no notification derived from alr-001")
}

// 删除设备不级联删除它的工单和告警
func TestSeed_DeviceDeleteDoesNotCascade(t *testing.T) {
	ctx, repos := seededRepos(t)

	require.NoError(t, repos.Devices.Delete(ctx, "dev-004"))
	_, err := repos.Devices.Get(ctx, "dev-004")
	assert.ErrorIs(t, err, ErrNotFound)

	ticket, err := repos.Tickets.Get(ctx, "tkt-001")
	require.NoError(t, err)
	assert.Equal(t, "dev-004", ticket.DeviceID)

	alert, err := repos.Alerts.Get(ctx, "alr-001")
	require.NoError(t, err)
	assert.Equal(t, "dev-004", alert.DeviceID)
}

func TestNotifications_MarkAllReadOnlyGivenIDs(t *testing.T) {
	ctx, repos := seededRepos(t)

	changed := repos.Notifications.MarkAllRead(ctx, []string{"ntf-001", "ntf-002", "ntf-missing"})
	assert.Equal(t, 2, changed)

	// 已读的不再计数
	changed = repos.Notifications.MarkAllRead(ctx, []string{"ntf-001"})
	assert.Equal(t, 0, changed)

	read := 0
	for _, n := range repos.Notifications.Snapshot(ctx) {
		if n.Read {
			read++
		}
	}
	assert.Equal(t, 2, read)
}
