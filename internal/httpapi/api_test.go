package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetwatch/internal/config"
	"fleetwatch/internal/repository"
	"fleetwatch/internal/service"
	"fleetwatch/internal/store"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func setupRouter(t *testing.T) *Router {
	log := zap.NewNop()
	clock := &fixedClock{now: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}

	repos := repository.NewRepos()
	repository.Seed(context.Background(), repos, clock.now)

	scope := service.NewScopeService(repos, log)
	history := service.NewHistoryService(service.NewMemoryHandleStore(), clock, config.ReportConfig{
		HistoryLimit:  50,
		RetentionDays: 30,
		SweepInterval: time.Hour,
	}, log)
	t.Cleanup(history.Close)

	identity := NewIdentity(repos.Users)
	router := NewRouter(log)
	router.RegisterAPIRoutes(
		NewSiteHandler(repos, scope, identity, log),
		NewDeviceHandler(service.NewDeviceService(repos, scope, log), identity, log),
		NewTicketHandler(service.NewTicketService(repos, scope, clock, log), identity, log),
		NewAlertHandler(service.NewAlertService(repos, scope, log), identity, log),
		NewNotificationHandler(service.NewNotificationService(repos, scope, log), identity, log),
		NewUserHandler(service.NewUserService(repos, log), identity, log),
		NewSettingsHandler(service.NewSettingsService(store.NewMemoryKV(), log), identity, log),
		NewReportHandler(service.NewReportService(repos, clock, log), history, scope, identity, clock, log),
	)
	return router
}

func doRequest(t *testing.T, router *Router, method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the Result wrapper with an untyped result payload.
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func listLen(t *testing.T, env envelope) int {
	var out struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &out))
	assert.Equal(t, len(out.Items), out.Total)
	return out.Total
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ResultSuccess, decodeEnvelope(t, rec).Code)
}

func TestListDevices_ScopedByHeaderIdentity(t *testing.T) {
	router := setupRouter(t)

	// admin 看到全部
	env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/devices?size=50", "usr-001", nil))
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, 13, listLen(t, env))

	// 单站点 viewer 只看到 site-005 的 3 台设备
	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/devices", "usr-004", nil))
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, 3, listLen(t, env))

	// 无身份头：空范围
	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/devices", "", nil))
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, 0, listLen(t, env))
}

func TestDeleteSite_RequiresAdmin(t *testing.T) {
	router := setupRouter(t)

	env := decodeEnvelope(t, doRequest(t, router, http.MethodDelete, "/api/v1/sites/site-003", "usr-004", nil))
	assert.Equal(t, ResultError, env.Code)
	assert.Equal(t, "admin role required", env.Message)

	env = decodeEnvelope(t, doRequest(t, router, http.MethodDelete, "/api/v1/sites/site-003", "usr-001", nil))
	assert.Equal(t, ResultSuccess, env.Code)
}

func TestGenerateReport_CustomRangeValidationMessages(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name    string
		start   string
		end     string
		message string
	}{
		{"start after end", "2025-06-05", "2025-06-01", "start date must not be after end date"},
		{"end in future", "2025-06-01", "2025-07-01", "end date must not be in the future"},
		{"range too wide", "2024-01-01", "2025-06-01", "date range must not exceed 365 days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/api/v1/reports/generate", "usr-001", map[string]any{
				"report_type": "consolidated",
				"date_preset": "custom",
				"start_date":  tt.start,
				"end_date":    tt.end,
			}))
			assert.Equal(t, ResultError, env.Code)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestReportLifecycle(t *testing.T) {
	router := setupRouter(t)

	// 生成
	env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/api/v1/reports/generate", "usr-001", map[string]any{
		"report_type": "consolidated",
		"date_preset": "last_7_days",
	}))
	require.Equal(t, ResultSuccess, env.Code)

	var item struct {
		ReportID     string `json:"report_id"`
		Name         string `json:"name"`
		Downloadable bool   `json:"downloadable"`
		GeneratedBy  string `json:"generated_by"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &item))
	require.NotEmpty(t, item.ReportID)
	assert.True(t, item.Downloadable)
	assert.Equal(t, "Ade Okonkwo", item.GeneratedBy)
	assert.Equal(t, "CONSOLIDATED_last_7_days_generated20250610_120000.xlsx", item.Name)

	// 历史列表
	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/reports/history", "usr-001", nil))
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, 1, listLen(t, env))

	// 下载
	rec := doRequest(t, router, http.MethodGet, "/api/v1/reports/history/"+item.ReportID+"/download", "usr-001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), item.Name)
	assert.NotEmpty(t, rec.Body.Bytes())

	// 释放句柄后下载退回元数据表格
	env = decodeEnvelope(t, doRequest(t, router, http.MethodDelete, "/api/v1/reports/history/"+item.ReportID+"/handle", "usr-001", nil))
	require.Equal(t, ResultSuccess, env.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/reports/history/"+item.ReportID+"/download", "usr-001", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestGenerateReport_NoDataMessage(t *testing.T) {
	router := setupRouter(t)

	// 单站点 viewer + 不存在于其站点的设备类型组合出空结果
	env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/api/v1/reports/generate", "usr-004", map[string]any{
		"report_type": "dvr_nvr_health",
		"date_preset": "last_7_days",
		"filters":     map[string]any{"device_type": "dvr"},
	}))
	assert.Equal(t, ResultError, env.Code)
	assert.Equal(t, "no data available for the selected filters and date range", env.Message)
}

func TestSettingsEndpoints(t *testing.T) {
	router := setupRouter(t)

	// 未设置时的默认值
	env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/settings/theme", "usr-002", nil))
	require.Equal(t, ResultSuccess, env.Code)
	assert.JSONEq(t, `{"theme":"system"}`, string(env.Result))

	env = decodeEnvelope(t, doRequest(t, router, http.MethodPut, "/api/v1/settings/theme", "usr-002", map[string]any{"theme": "dark"}))
	require.Equal(t, ResultSuccess, env.Code)

	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/settings/theme", "usr-002", nil))
	assert.JSONEq(t, `{"theme":"dark"}`, string(env.Result))

	// 布局往返
	env = decodeEnvelope(t, doRequest(t, router, http.MethodPut, "/api/v1/settings/layout", "usr-002", map[string]any{
		"layout": map[string]any{"show_alerts": false},
	}))
	require.Equal(t, ResultSuccess, env.Code)

	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/settings/layout", "usr-002", nil))
	assert.JSONEq(t, `{"layout":{"show_alerts":false}}`, string(env.Result))

	// 没有身份头直接拒绝
	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/settings/theme", "", nil))
	assert.Equal(t, ResultError, env.Code)
}

func TestTicketStatusAndComments(t *testing.T) {
	router := setupRouter(t)

	env := decodeEnvelope(t, doRequest(t, router, http.MethodPut, "/api/v1/tickets/tkt-002/status", "usr-002", map[string]any{
		"status": "in_progress",
	}))
	require.Equal(t, ResultSuccess, env.Code)

	env = decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/api/v1/tickets/tkt-002/comments", "usr-002", map[string]any{
		"text": "Ordered a replacement disk.",
	}))
	require.Equal(t, ResultSuccess, env.Code)

	var ticket struct {
		Status   string `json:"status"`
		Comments []struct {
			Text string `json:"text"`
		} `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &ticket))
	assert.Equal(t, "in_progress", ticket.Status)
	require.Len(t, ticket.Comments, 1)
	assert.Equal(t, "Ordered a replacement disk.", ticket.Comments[0].Text)
}

// 重新分配站点后，用户的可见范围要立刻跟着变
func TestUpdateUser_ReassignedSitesChangeVisibility(t *testing.T) {
	router := setupRouter(t)

	// usr-004 初始只看到 site-005 的 3 台设备
	env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/devices", "usr-004", nil))
	require.Equal(t, ResultSuccess, env.Code)
	require.Equal(t, 3, listLen(t, env))

	// admin 把 usr-004 改派到 site-001
	env = decodeEnvelope(t, doRequest(t, router, http.MethodPut, "/api/v1/users/usr-004", "usr-001", map[string]any{
		"assigned_sites": []string{"site-001"},
	}))
	require.Equal(t, ResultSuccess, env.Code)
	var updated struct {
		AssignedSites []string `json:"assigned_sites"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &updated))
	assert.Equal(t, []string{"site-001"}, updated.AssignedSites)

	// site-001 有 4 台设备（3 摄像头 + 1 NVR）
	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/devices", "usr-004", nil))
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, 4, listLen(t, env))
}

func TestUpdateDevice_PatchFieldsThroughAPI(t *testing.T) {
	router := setupRouter(t)

	env := decodeEnvelope(t, doRequest(t, router, http.MethodPut, "/api/v1/devices/dev-001", "usr-001", map[string]any{
		"recording": false,
		"last_seen": "2025-06-09T10:00:00Z",
	}))
	require.Equal(t, ResultSuccess, env.Code)

	var device struct {
		Recording bool   `json:"recording"`
		LastSeen  string `json:"last_seen"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &device))
	assert.False(t, device.Recording)
	assert.Equal(t, "2025-06-09T10:00:00Z", device.LastSeen)
}

func TestCreateUser_UnknownRoleMessage(t *testing.T) {
	router := setupRouter(t)

	env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/api/v1/users", "usr-001", map[string]any{
		"name": "New Operator",
		"role": "superuser",
	}))
	assert.Equal(t, ResultError, env.Code)
	assert.Equal(t, `unknown role "superuser"`, env.Message)
}

func TestNotificationsReadFlow(t *testing.T) {
	router := setupRouter(t)

	env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/notifications", "usr-004", nil))
	require.Equal(t, ResultSuccess, env.Code)
	var list struct {
		Items  []struct{ NotificationID string `json:"notification_id"` } `json:"items"`
		Unread int                                                        `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Unread)

	env = decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/api/v1/notifications/read-all", "usr-004", nil))
	require.Equal(t, ResultSuccess, env.Code)
	assert.JSONEq(t, `{"updated":1}`, string(env.Result))

	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/notifications", "usr-004", nil))
	require.NoError(t, json.Unmarshal(env.Result, &list))
	assert.Equal(t, 0, list.Unread)
}
