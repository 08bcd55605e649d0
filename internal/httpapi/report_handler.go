package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 报表 Handler
// 生成与写入历史是两步：Generate 无副作用，成功后由这里写入历史
type ReportHandler struct {
	reports  service.ReportService
	history  *service.HistoryService
	scope    service.ScopeService
	identity *Identity
	clock    service.Clock
	logger   *zap.Logger
}

// NewReportHandler 创建报表 Handler
func NewReportHandler(
	reports service.ReportService,
	history *service.HistoryService,
	scope service.ScopeService,
	identity *Identity,
	clock service.Clock,
	logger *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		history:  history,
		scope:    scope,
		identity: identity,
		clock:    clock,
		logger:   logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/reports/generate" && r.Method == http.MethodPost:
		h.GenerateReport(w, r)
	case path == "/api/v1/reports/history" && r.Method == http.MethodGet:
		h.ListHistory(w, r)
	case strings.HasSuffix(path, "/download") && r.Method == http.MethodGet:
		reportID := strings.TrimPrefix(strings.TrimSuffix(path, "/download"), "/api/v1/reports/history/")
		if reportID != "" && !strings.Contains(reportID, "/") {
			h.DownloadReport(w, r, reportID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasSuffix(path, "/handle") && r.Method == http.MethodDelete:
		reportID := strings.TrimPrefix(strings.TrimSuffix(path, "/handle"), "/api/v1/reports/history/")
		if reportID != "" && !strings.Contains(reportID, "/") {
			h.ReleaseHandle(w, r, reportID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// generateRequest 报表生成请求体。custom 之外的预设忽略 start_date/end_date
type generateRequest struct {
	ReportType string `json:"report_type"`
	DatePreset string `json:"date_preset"`
	StartDate  string `json:"start_date"` // yyyy-MM-dd，仅 custom
	EndDate    string `json:"end_date"`   // yyyy-MM-dd，仅 custom
	Filters    struct {
		SiteID     string `json:"site_id"`
		DeviceType string `json:"device_type"`
		Status     string `json:"status"`
		IssueType  string `json:"issue_type"`
		DeviceID   string `json:"device_id"`
	} `json:"filters"`
}

func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil {
		writeFail(w, "unknown user")
		return
	}

	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, "invalid request body")
		return
	}

	sel := service.DateSelection{Preset: req.DatePreset}
	if req.DatePreset == service.DateSelectionCustom {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			writeFail(w, "invalid start date")
			return
		}
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			writeFail(w, "invalid end date")
			return
		}
		if err := service.ValidateCustomRange(start, end, h.clock.Now()); err != nil {
			writeFail(w, err.Error())
			return
		}
		sel.Start = start
		sel.End = end
	}

	generated, err := h.reports.Generate(ctx, service.GenerateRequest{
		ReportType: req.ReportType,
		Dates:      sel,
		Filters: service.ReportFilters{
			SiteID:     req.Filters.SiteID,
			DeviceType: req.Filters.DeviceType,
			Status:     req.Filters.Status,
			IssueType:  req.Filters.IssueType,
			DeviceID:   req.Filters.DeviceID,
		},
		SiteScope:   h.scope.SiteScope(user),
		GeneratedBy: user.Name,
	})
	if err != nil {
		if service.IsValidation(err) || errors.Is(err, service.ErrNoData) {
			writeFail(w, err.Error())
			return
		}
		h.logger.Error("GenerateReport failed",
			zap.String("report_type", req.ReportType),
			zap.Error(err))
		writeFail(w, "failed to generate report")
		return
	}

	item := h.history.Add(ctx, domain.ReportHistoryItem{
		Name:           generated.FileName,
		ReportType:     req.ReportType,
		DateRangeLabel: generated.DateRangeLabel,
		GeneratedBy:    user.Name,
	}, generated.Content)

	writeOk(w, item.ToJSON())
}

func (h *ReportHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	items := h.history.List(r.Context())
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		out = append(out, items[i].ToJSON())
	}
	writeOk(w, map[string]any{"items": out, "total": len(out)})
}

func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request, reportID string) {
	content, name, err := h.history.Download(r.Context(), reportID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFoundHistory):
			writeFail(w, "report not found")
		case errors.Is(err, service.ErrExpiredResource):
			writeFail(w, err.Error())
		default:
			h.logger.Error("DownloadReport failed",
				zap.String("report_id", reportID),
				zap.Error(err))
			writeFail(w, "failed to download report")
		}
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (h *ReportHandler) ReleaseHandle(w http.ResponseWriter, r *http.Request, reportID string) {
	if err := h.history.ClearHandle(r.Context(), reportID); err != nil {
		if errors.Is(err, service.ErrNotFoundHistory) {
			writeFail(w, "report not found")
			return
		}
		writeFail(w, "failed to release report handle")
		return
	}
	writeOk(w, map[string]any{"released": reportID})
}
