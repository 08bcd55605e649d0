package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"fleetwatch/internal/service"
)

// SettingsHandler 用户设置 Handler
// 所有操作都针对当前用户（X-User-Id），不接受路径里的用户参数
type SettingsHandler struct {
	settings service.SettingsService
	identity *Identity
	logger   *zap.Logger
}

// NewSettingsHandler 创建设置 Handler
func NewSettingsHandler(settings service.SettingsService, identity *Identity, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := h.identity.CurrentUser(r.Context(), r)
	if user == nil {
		writeFail(w, "unknown user")
		return
	}

	switch {
	case r.URL.Path == "/api/v1/settings/layout" && r.Method == http.MethodGet:
		h.GetLayout(w, r, user.UserID)
	case r.URL.Path == "/api/v1/settings/layout" && r.Method == http.MethodPut:
		h.PutLayout(w, r, user.UserID)
	case r.URL.Path == "/api/v1/settings/theme" && r.Method == http.MethodGet:
		h.GetTheme(w, r, user.UserID)
	case r.URL.Path == "/api/v1/settings/theme" && r.Method == http.MethodPut:
		h.PutTheme(w, r, user.UserID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *SettingsHandler) GetLayout(w http.ResponseWriter, r *http.Request, userID string) {
	layout, err := h.settings.GetLayout(r.Context(), userID)
	if err != nil {
		h.logger.Error("GetLayout failed", zap.Error(err))
		writeFail(w, "failed to load layout")
		return
	}
	writeOk(w, map[string]any{"layout": json.RawMessage(layout)})
}

func (h *SettingsHandler) PutLayout(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Layout json.RawMessage `json:"layout"`
	}
	if err := decodeBody(r, &req); err != nil || len(req.Layout) == 0 {
		writeFail(w, "invalid request body")
		return
	}
	if err := h.settings.PutLayout(r.Context(), userID, req.Layout); err != nil {
		h.logger.Error("PutLayout failed", zap.Error(err))
		writeFail(w, "failed to save layout")
		return
	}
	writeOk(w, map[string]any{"saved": true})
}

func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request, userID string) {
	theme, err := h.settings.GetTheme(r.Context(), userID)
	if err != nil {
		h.logger.Error("GetTheme failed", zap.Error(err))
		writeFail(w, "failed to load theme")
		return
	}
	writeOk(w, map[string]any{"theme": theme})
}

func (h *SettingsHandler) PutTheme(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, "invalid request body")
		return
	}
	if err := h.settings.PutTheme(r.Context(), userID, req.Theme); err != nil {
		writeFail(w, err.Error())
		return
	}
	writeOk(w, map[string]any{"theme": req.Theme})
}
