package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fleetwatch/internal/repository"
	"fleetwatch/internal/service"
)

// NotificationHandler 通知 Handler
type NotificationHandler struct {
	notifications service.NotificationService
	identity      *Identity
	logger        *zap.Logger
}

// NewNotificationHandler 创建通知 Handler
func NewNotificationHandler(notifications service.NotificationService, identity *Identity, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/notifications" && r.Method == http.MethodGet:
		h.ListNotifications(w, r)
	case path == "/api/v1/notifications/read-all" && r.Method == http.MethodPost:
		h.MarkAllRead(w, r)
	case strings.HasSuffix(path, "/read") && r.Method == http.MethodPost:
		notificationID := strings.TrimPrefix(strings.TrimSuffix(path, "/read"), "/api/v1/notifications/")
		if notificationID != "" && !strings.Contains(notificationID, "/") {
			h.MarkRead(w, r, notificationID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)

	notifications := h.notifications.ListNotifications(ctx, user)
	items := make([]map[string]any, 0, len(notifications))
	unread := 0
	for i := range notifications {
		if !notifications[i].Read {
			unread++
		}
		items = append(items, notifications[i].ToJSON())
	}
	writeOk(w, map[string]any{"items": items, "total": len(items), "unread": unread})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	ctx := r.Context()
	if h.identity.CurrentUser(ctx, r) == nil {
		writeFail(w, "unknown user")
		return
	}
	n, err := h.notifications.MarkRead(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "notification not found")
			return
		}
		h.logger.Error("MarkRead failed", zap.Error(err))
		writeFail(w, "failed to mark notification read")
		return
	}
	writeOk(w, n.ToJSON())
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil {
		writeFail(w, "unknown user")
		return
	}
	updated := h.notifications.MarkAllRead(ctx, user)
	writeOk(w, map[string]any{"updated": updated})
}
