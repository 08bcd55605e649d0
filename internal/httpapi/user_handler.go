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

// UserHandler 用户 Handler
// 除只读列表/详情外全部仅 admin 可操作
type UserHandler struct {
	users    service.UserService
	identity *Identity
	logger   *zap.Logger
}

// NewUserHandler 创建用户 Handler
func NewUserHandler(users service.UserService, identity *Identity, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/users" && r.Method == http.MethodGet:
		h.ListUsers(w, r)
	case path == "/api/v1/users" && r.Method == http.MethodPost:
		h.CreateUser(w, r)
	case strings.HasPrefix(path, "/api/v1/users/"):
		userID := strings.TrimPrefix(path, "/api/v1/users/")
		if userID == "" || strings.Contains(userID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetUser(w, r, userID)
		case http.MethodPut:
			h.UpdateUser(w, r, userID)
		case http.MethodDelete:
			h.DeleteUser(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users := h.users.ListUsers(ctx)
	items := make([]map[string]any, 0, len(users))
	for i := range users {
		items = append(items, users[i].ToJSON())
	}
	writeOk(w, map[string]any{"items": items, "total": len(items)})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	u, err := h.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "user not found")
			return
		}
		writeFail(w, "failed to get user")
		return
	}
	writeOk(w, u.ToJSON())
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := h.identity.CurrentUser(ctx, r)
	if caller == nil || !caller.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}

	var req struct {
		Name          string   `json:"name"`
		Email         string   `json:"email"`
		Role          string   `json:"role"`
		AssignedSites []string `json:"assigned_sites"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeFail(w, "invalid request body")
		return
	}
	if req.Name == "" {
		writeFail(w, "name is required")
		return
	}

	u, err := h.users.CreateUser(ctx, domain.User{
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		AssignedSites: req.AssignedSites,
	})
	if err != nil {
		if service.IsValidation(err) {
			writeFail(w, err.Error())
			return
		}
		h.logger.Error("CreateUser failed", zap.Error(err))
		writeFail(w, "failed to create user")
		return
	}
	writeOk(w, u.ToJSON())
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	caller := h.identity.CurrentUser(ctx, r)
	if caller == nil || !caller.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}

	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		writeFail(w, "invalid request body")
		return
	}
	u, err := h.users.UpdateUser(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "user not found")
			return
		}
		if service.IsValidation(err) {
			writeFail(w, err.Error())
			return
		}
		writeFail(w, "failed to update user")
		return
	}
	writeOk(w, u.ToJSON())
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	caller := h.identity.CurrentUser(ctx, r)
	if caller == nil || !caller.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}
	if err := h.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "user not found")
			return
		}
		writeFail(w, "failed to delete user")
		return
	}
	writeOk(w, map[string]any{"deleted": userID})
}
