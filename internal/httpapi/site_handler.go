package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
	"fleetwatch/internal/service"
)

// SiteHandler 站点管理 Handler
type SiteHandler struct {
	repos    *repository.Repos
	scope    service.ScopeService
	identity *Identity
	logger   *zap.Logger
}

// NewSiteHandler 创建站点管理 Handler
func NewSiteHandler(repos *repository.Repos, scope service.ScopeService, identity *Identity, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{repos: repos, scope: scope, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *SiteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/sites" && r.Method == http.MethodGet:
		h.ListSites(w, r)
	case path == "/api/v1/sites" && r.Method == http.MethodPost:
		h.CreateSite(w, r)
	case strings.HasPrefix(path, "/api/v1/sites/"):
		siteID := strings.TrimPrefix(path, "/api/v1/sites/")
		if siteID == "" || strings.Contains(siteID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPut:
			h.UpdateSite(w, r, siteID)
		case http.MethodDelete:
			h.DeleteSite(w, r, siteID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListSites 当前用户可见的站点列表
func (h *SiteHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	sites := h.scope.VisibleSites(ctx, user)

	items := make([]map[string]any, 0, len(sites))
	for i := range sites {
		items = append(items, sites[i].ToJSON())
	}
	writeOk(w, map[string]any{"items": items, "total": len(items)})
}

func (h *SiteHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil || !user.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}

	var body struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		Status  string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil || body.Name == "" {
		writeFail(w, "name is required")
		return
	}

	created, err := h.repos.Sites.Create(ctx, domain.Site{
		Name: body.Name, Address: body.Address, City: body.City, Status: body.Status,
	})
	if err != nil {
		h.logger.Error("CreateSite failed", zap.Error(err))
		writeFail(w, "failed to create site")
		return
	}
	writeOk(w, created.ToJSON())
}

func (h *SiteHandler) UpdateSite(w http.ResponseWriter, r *http.Request, siteID string) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil || !user.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}

	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		writeFail(w, "invalid request body")
		return
	}
	updated, err := h.repos.Sites.Update(ctx, siteID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "site not found")
			return
		}
		h.logger.Error("UpdateSite failed", zap.String("site_id", siteID), zap.Error(err))
		writeFail(w, "failed to update site")
		return
	}
	writeOk(w, updated.ToJSON())
}

func (h *SiteHandler) DeleteSite(w http.ResponseWriter, r *http.Request, siteID string) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil || !user.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}
	if err := h.repos.Sites.Delete(ctx, siteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "site not found")
			return
		}
		writeFail(w, "failed to delete site")
		return
	}
	writeOk(w, map[string]any{"deleted": siteID})
}
