package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fleetwatch/internal/domain"
)

func setupReports(t *testing.T) (context.Context, ReportService, *fixedClock) {
	clock := &fixedClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	repos := newSeededRepos(clock.now)
	return context.Background(), NewReportService(repos, clock, zap.NewNop()), clock
}

func TestValidateCustomRange(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"valid", now.Add(-10 * day), now.Add(-1 * day), nil},
		{"start after end", now.Add(-1 * day), now.Add(-10 * day), ErrStartAfterEnd},
		{"end in future", now.Add(-10 * day), now.Add(1 * day), ErrEndInFuture},
		{"range too wide", now.Add(-400 * day), now, ErrRangeTooWide},
		{"exactly 365 days", now.Add(-365 * day), now, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomRange(tt.start, tt.end, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidation(err))
			}
		})
	}
}

func TestGenerate_FileNameAndContent(t *testing.T) {
	ctx, reports, _ := setupReports(t)

	out, err := reports.Generate(ctx, GenerateRequest{
		ReportType: domain.ReportTypeConsolidated,
		Dates:      DateSelection{Preset: DatePresetLast7Days},
	})
	require.NoError(t, err)
	assert.Equal(t, "CONSOLIDATED_last_7_days_generated20250610_120000.xlsx", out.FileName)
	assert.Equal(t, "last_7_days", out.DateRangeLabel)
	require.NotEmpty(t, out.Content)

	// 产出必须是可解析的 xlsx，且首行为表头
	f, err := excelize.OpenReader(bytes.NewReader(out.Content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Consolidated")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Site", rows[0][0])
	// 全部 13 台设备的 last_seen 都落在 7 天窗口内
	assert.Len(t, rows, 14)
}

func TestGenerate_CustomRangeLabel(t *testing.T) {
	ctx, reports, _ := setupReports(t)

	out, err := reports.Generate(ctx, GenerateRequest{
		ReportType: domain.ReportTypeTicketLog,
		Dates: DateSelection{
			Preset: DateSelectionCustom,
			Start:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "20250601-20250610", out.DateRangeLabel)
}

func TestGenerate_NoDataForEmptyWindow(t *testing.T) {
	ctx, reports, _ := setupReports(t)

	// 远在种子数据之前的窗口：没有设备也没有工单落入
	_, err := reports.Generate(ctx, GenerateRequest{
		ReportType: domain.ReportTypeConsolidated,
		Dates: DateSelection{
			Preset: DateSelectionCustom,
			Start:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGenerate_UnknownReportType(t *testing.T) {
	ctx, reports, _ := setupReports(t)

	_, err := reports.Generate(ctx, GenerateRequest{
		ReportType: "quarterly_summary",
		Dates:      DateSelection{Preset: DatePresetLast7Days},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGenerate_UnknownDatePreset(t *testing.T) {
	ctx, reports, _ := setupReports(t)

	_, err := reports.Generate(ctx, GenerateRequest{
		ReportType: domain.ReportTypeConsolidated,
		Dates:      DateSelection{Preset: "yesterday"},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGenerate_SiteScopeRestrictsRows(t *testing.T) {
	ctx, reports, _ := setupReports(t)

	out, err := reports.Generate(ctx, GenerateRequest{
		ReportType: domain.ReportTypeCameraHealth,
		Dates:      DateSelection{Preset: DatePresetLast30Days},
		SiteScope:  []string{"site-005"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out.Content))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Camera Health")
	require.NoError(t, err)
	// 表头 + site-005 的两台摄像头
	require.Len(t, rows, 3)
	assert.Equal(t, "Level 1 Ramp Cam", rows[1][1])
	assert.Equal(t, "Level 2 Ramp Cam", rows[2][1])
}

func TestFilterDevices(t *testing.T) {
	devices := []domain.Device{
		{DeviceID: "d1", SiteID: "s1", Type: domain.DeviceTypeCamera, Status: domain.DeviceStatusOnline, Health: domain.DeviceHealthHealthy},
		{DeviceID: "d2", SiteID: "s1", Type: domain.DeviceTypeNVR, Status: domain.DeviceStatusOffline, Health: domain.DeviceHealthFaulty},
		{DeviceID: "d3", SiteID: "s2", Type: domain.DeviceTypeCamera, Status: domain.DeviceStatusWarning, Health: domain.DeviceHealthDegraded},
	}

	// "all" 等价于不过滤
	out := filterDevices(devices, nil, ReportFilters{SiteID: "all", DeviceType: "all", Status: "all"})
	assert.Len(t, out, 3)

	out = filterDevices(devices, []string{"s1"}, ReportFilters{})
	assert.Len(t, out, 2)

	out = filterDevices(devices, nil, ReportFilters{DeviceType: domain.DeviceTypeCamera, IssueType: domain.DeviceHealthDegraded})
	require.Len(t, out, 1)
	assert.Equal(t, "d3", out[0].DeviceID)

	out = filterDevices(devices, []string{"s2"}, ReportFilters{DeviceID: "d1"})
	assert.Empty(t, out)
}

func TestWithinWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, withinWindow(start, start, end))
	assert.True(t, withinWindow(end, start, end))
	assert.False(t, withinWindow(start.Add(-time.Second), start, end))
	assert.False(t, withinWindow(end.Add(time.Second), start, end))

	// 零值 start 表示没有下界
	assert.True(t, withinWindow(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{}, end))
}

func TestBuildReportRows_RecorderOnlyTypes(t *testing.T) {
	devices := []domain.Device{
		{DeviceID: "d1", SiteID: "s1", Type: domain.DeviceTypeCamera, Name: "Cam"},
		{DeviceID: "d2", SiteID: "s1", Type: domain.DeviceTypeNVR, Name: "NVR", HDDCapacityGB: 1000, HDDUsedGB: 250},
		{DeviceID: "d3", SiteID: "s1", Type: domain.DeviceTypeSwitch, Name: "Switch"},
	}
	names := map[string]string{"s1": "HQ"}

	headers, rows := buildReportRows(domain.ReportTypeDVRNVRHealth, devices, nil, names, time.Time{}, time.Now())
	require.NotNil(t, headers)
	require.Len(t, rows, 1)
	assert.Equal(t, "NVR", rows[0][1])

	_, rows = buildReportRows(domain.ReportTypeHDDHealth, devices, nil, names, time.Time{}, time.Now())
	require.Len(t, rows, 1)
	assert.Equal(t, "25.0", rows[0][6])

	_, rows = buildReportRows(domain.ReportTypeCameraHealth, devices, nil, names, time.Time{}, time.Now())
	require.Len(t, rows, 1)
	assert.Equal(t, "Cam", rows[0][1])

	headers, rows = buildReportRows("bogus", devices, nil, names, time.Time{}, time.Now())
	assert.Nil(t, headers)
	assert.Nil(t, rows)
}

func TestBuildReportRows_ConsolidatedOpenTicketCounts(t *testing.T) {
	devices := []domain.Device{{DeviceID: "d1", SiteID: "s1", Name: "Cam", Type: domain.DeviceTypeCamera}}
	tickets := []domain.Ticket{
		{TicketID: "t1", DeviceID: "d1", Status: domain.TicketStatusOpen},
		{TicketID: "t2", DeviceID: "d1", Status: domain.TicketStatusInProgress},
		{TicketID: "t3", DeviceID: "d1", Status: domain.TicketStatusResolved},
		{TicketID: "t4", DeviceID: "other", Status: domain.TicketStatusOpen},
	}

	_, rows := buildReportRows(domain.ReportTypeConsolidated, devices, tickets, nil, time.Time{}, time.Now())
	require.Len(t, rows, 1)
	// resolved 不计入，别的设备不计入
	assert.Equal(t, 2, rows[0][7])
}
