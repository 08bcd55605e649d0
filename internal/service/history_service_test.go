package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetwatch/internal/config"
	"fleetwatch/internal/domain"
)

func setupHistory(t *testing.T, limit, retentionDays int) (*HistoryService, *MemoryHandleStore, *fixedClock) {
	clock := &fixedClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	handles := NewMemoryHandleStore()
	svc := NewHistoryService(handles, clock, config.ReportConfig{
		HistoryLimit:  limit,
		RetentionDays: retentionDays,
		SweepInterval: time.Hour,
	}, zap.NewNop())
	t.Cleanup(svc.Close)
	return svc, handles, clock
}

func TestHistory_AddThenDownloadRoundTrip(t *testing.T) {
	svc, handles, _ := setupHistory(t, 50, 30)
	ctx := context.Background()
	content := []byte("xlsx-bytes-placeholder")

	item := svc.Add(ctx, domain.ReportHistoryItem{Name: "CONSOLIDATED_last_7_days.xlsx", ReportType: domain.ReportTypeConsolidated}, content)
	require.NotEmpty(t, item.ReportID)
	assert.Equal(t, domain.ReportStatusReady, item.Status)
	assert.Equal(t, len(content), item.SizeBytes)
	assert.Equal(t, "xlsx", item.Format)
	assert.Equal(t, 1, handles.Len())

	got, name, err := svc.Download(ctx, item.ReportID)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, "CONSOLIDATED_last_7_days.xlsx", name)
}

func TestHistory_ListNewestFirst(t *testing.T) {
	svc, _, clock := setupHistory(t, 50, 30)
	ctx := context.Background()

	first := svc.Add(ctx, domain.ReportHistoryItem{Name: "first"}, []byte("a"))
	clock.now = clock.now.Add(time.Minute)
	second := svc.Add(ctx, domain.ReportHistoryItem{Name: "second"}, []byte("b"))

	items := svc.List(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, second.ReportID, items[0].ReportID)
	assert.Equal(t, first.ReportID, items[1].ReportID)
}

// 超出上限从尾部淘汰最旧条目，同时释放其句柄
func TestHistory_EvictsOldestOverLimit(t *testing.T) {
	svc, handles, clock := setupHistory(t, 50, 30)
	ctx := context.Background()

	var firstID string
	for i := 0; i < 51; i++ {
		item := svc.Add(ctx, domain.ReportHistoryItem{Name: fmt.Sprintf("report-%02d", i)}, []byte("x"))
		if i == 0 {
			firstID = item.ReportID
		}
		clock.now = clock.now.Add(time.Second)
	}

	items := svc.List(ctx)
	require.Len(t, items, 50)
	assert.Equal(t, 50, handles.Len())
	for _, it := range items {
		assert.NotEqual(t, firstID, it.ReportID)
	}

	_, _, err := svc.Download(ctx, firstID)
	assert.ErrorIs(t, err, ErrNotFoundHistory)
}

func TestHistory_SweepExpiresByRetention(t *testing.T) {
	svc, handles, clock := setupHistory(t, 50, 30)
	ctx := context.Background()

	old := svc.Add(ctx, domain.ReportHistoryItem{Name: "old"}, []byte("old"))
	clock.now = clock.now.Add(29 * 24 * time.Hour)
	fresh := svc.Add(ctx, domain.ReportHistoryItem{Name: "fresh"}, []byte("fresh"))

	// 29 天：都在保留期内
	assert.Equal(t, 0, svc.Sweep(ctx))

	// 31 天：只有 old 过期，句柄被释放
	clock.now = clock.now.Add(2 * 24 * time.Hour)
	assert.Equal(t, 1, svc.Sweep(ctx))
	assert.Equal(t, 1, handles.Len())

	items := svc.List(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, domain.ReportStatusReady, items[0].Status)
	assert.Equal(t, domain.ReportStatusExpired, items[1].Status)

	// 过期条目仍在列表里，但不可下载原文件
	_, _, err := svc.Download(ctx, old.ReportID)
	assert.ErrorIs(t, err, ErrExpiredResource)

	// 再扫一次不重复计数
	assert.Equal(t, 0, svc.Sweep(ctx))

	_, _, err = svc.Download(ctx, fresh.ReportID)
	assert.NoError(t, err)
}

// 句柄被显式释放后，下载退回仅含元数据的表格，而不是报错
func TestHistory_DownloadAfterClearHandleFallsBackToMetadata(t *testing.T) {
	svc, handles, _ := setupHistory(t, 50, 30)
	ctx := context.Background()

	original := []byte("original-content")
	item := svc.Add(ctx, domain.ReportHistoryItem{Name: "report.xlsx"}, original)

	require.NoError(t, svc.ClearHandle(ctx, item.ReportID))
	assert.Equal(t, 0, handles.Len())

	// 条目仍是 ready 且可见
	items := svc.List(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ReportStatusReady, items[0].Status)

	content, name, err := svc.Download(ctx, item.ReportID)
	require.NoError(t, err)
	assert.Equal(t, "report.xlsx", name)
	assert.NotEmpty(t, content)
	assert.NotEqual(t, original, content)
}

func TestHistory_ClearHandleUnknownID(t *testing.T) {
	svc, _, _ := setupHistory(t, 50, 30)
	err := svc.ClearHandle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFoundHistory)
}

func TestHistory_DownloadUnknownID(t *testing.T) {
	svc, _, _ := setupHistory(t, 50, 30)
	_, _, err := svc.Download(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFoundHistory)
}

func TestHistory_CloseReleasesAllHandles(t *testing.T) {
	svc, handles, _ := setupHistory(t, 50, 30)
	ctx := context.Background()

	svc.Add(ctx, domain.ReportHistoryItem{Name: "a"}, []byte("a"))
	svc.Add(ctx, domain.ReportHistoryItem{Name: "b"}, []byte("b"))
	require.Equal(t, 2, handles.Len())

	svc.Close()
	assert.Equal(t, 0, handles.Len())
	// 幂等
	svc.Close()
}
