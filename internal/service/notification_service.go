package service

import (
	"context"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// NotificationService 通知服务接口
// 通知在种子阶段从告警一次性派生，之后不随告警变化重新同步；
// read 标记独立维护
type NotificationService interface {
	ListNotifications(ctx context.Context, user *domain.User) []domain.Notification
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	// MarkAllRead 仅作用于当前用户可见的通知，返回改动条数
	MarkAllRead(ctx context.Context, user *domain.User) int
}

type notificationService struct {
	repos  *repository.Repos
	scope  ScopeService
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repos *repository.Repos, scope ScopeService, logger *zap.Logger) NotificationService {
	return &notificationService{repos: repos, scope: scope, logger: logger}
}

func (s *notificationService) ListNotifications(ctx context.Context, user *domain.User) []domain.Notification {
	return s.scope.VisibleNotifications(ctx, user)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return s.repos.Notifications.MarkRead(ctx, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, user *domain.User) int {
	visible := s.scope.VisibleNotifications(ctx, user)
	ids := make([]string, 0, len(visible))
	for _, n := range visible {
		ids = append(ids, n.NotificationID)
	}
	changed := s.repos.Notifications.MarkAllRead(ctx, ids)
	if changed > 0 {
		s.logger.Info("notifications marked read", zap.Int("count", changed))
	}
	return changed
}
