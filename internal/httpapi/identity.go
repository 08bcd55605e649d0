package httpapi

import (
	"context"
	"net/http"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// Identity 当前用户上下文
// X-User-Id 头解析到用户集合；缺失或未知用户 -> nil（列表接口表现为空范围）
// 进程不持久化会话，重启即重置
type Identity struct {
	users repository.UsersRepo
}

func NewIdentity(users repository.UsersRepo) *Identity {
	return &Identity{users: users}
}

// CurrentUser resolves the caller. Returns nil when the header is
// missing or does not match a known user.
func (i *Identity) CurrentUser(ctx context.Context, r *http.Request) *domain.User {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		return nil
	}
	u, err := i.users.Get(ctx, userID)
	if err != nil {
		return nil
	}
	return u
}
