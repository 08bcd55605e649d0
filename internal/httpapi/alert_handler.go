package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fleetwatch/internal/repository"
	"fleetwatch/internal/service"
)

// AlertHandler 告警 Handler
type AlertHandler struct {
	alerts   service.AlertService
	identity *Identity
	logger   *zap.Logger
}

// NewAlertHandler 创建告警 Handler
func NewAlertHandler(alerts service.AlertService, identity *Identity, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AlertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/alerts" && r.Method == http.MethodGet:
		h.ListAlerts(w, r)
	case strings.HasSuffix(path, "/ack") && r.Method == http.MethodPost:
		alertID := strings.TrimPrefix(strings.TrimSuffix(path, "/ack"), "/api/v1/alerts/")
		if alertID != "" && !strings.Contains(alertID, "/") {
			h.Acknowledge(w, r, alertID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasSuffix(path, "/resolve") && r.Method == http.MethodPost:
		alertID := strings.TrimPrefix(strings.TrimSuffix(path, "/resolve"), "/api/v1/alerts/")
		if alertID != "" && !strings.Contains(alertID, "/") {
			h.Resolve(w, r, alertID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	resp, err := h.alerts.ListAlerts(ctx, service.ListAlertsRequest{
		User:   h.identity.CurrentUser(ctx, r),
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Page:   queryInt(r, "page", 1),
		Size:   queryInt(r, "size", 50),
	})
	if err != nil {
		h.logger.Error("ListAlerts failed", zap.Error(err))
		writeFail(w, "failed to list alerts")
		return
	}

	items := make([]map[string]any, 0, len(resp.Items))
	for i := range resp.Items {
		items = append(items, resp.Items[i].ToJSON())
	}
	writeOk(w, map[string]any{"items": items, "total": resp.Total})
}

func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request, alertID string) {
	ctx := r.Context()
	if h.identity.CurrentUser(ctx, r) == nil {
		writeFail(w, "unknown user")
		return
	}
	a, err := h.alerts.Acknowledge(ctx, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "alert not found")
			return
		}
		writeFail(w, "failed to acknowledge alert")
		return
	}
	writeOk(w, a.ToJSON())
}

func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request, alertID string) {
	ctx := r.Context()
	if h.identity.CurrentUser(ctx, r) == nil {
		writeFail(w, "unknown user")
		return
	}
	a, err := h.alerts.Resolve(ctx, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "alert not found")
			return
		}
		writeFail(w, "failed to resolve alert")
		return
	}
	writeOk(w, a.ToJSON())
}
