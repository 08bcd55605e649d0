package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
	r.mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeOk(w, map[string]any{"status": "ok"})
	})
	return r
}

func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAPIRoutes 挂载全部 /api/v1 路由
func (r *Router) RegisterAPIRoutes(
	sites *SiteHandler,
	devices *DeviceHandler,
	tickets *TicketHandler,
	alerts *AlertHandler,
	notifications *NotificationHandler,
	users *UserHandler,
	settings *SettingsHandler,
	reports *ReportHandler,
) {
	r.Handle("/api/v1/sites", sites)
	r.Handle("/api/v1/sites/", sites)

	r.Handle("/api/v1/devices", devices)
	r.Handle("/api/v1/devices/", devices)

	r.Handle("/api/v1/tickets", tickets)
	r.Handle("/api/v1/tickets/", tickets)

	r.Handle("/api/v1/alerts", alerts)
	r.Handle("/api/v1/alerts/", alerts)

	r.Handle("/api/v1/notifications", notifications)
	r.Handle("/api/v1/notifications/", notifications)

	r.Handle("/api/v1/users", users)
	r.Handle("/api/v1/users/", users)

	r.Handle("/api/v1/settings/", settings)

	r.Handle("/api/v1/reports/", reports)
}
