package service

import (
	"context"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// AlertService 告警服务接口
// 状态名义上单向流转 active -> acknowledged -> resolved，但这里不做
// 顺序校验：acknowledge 一条已 resolved 的告警不会被拒绝
type AlertService interface {
	ListAlerts(ctx context.Context, req ListAlertsRequest) (*ListAlertsResponse, error)
	Acknowledge(ctx context.Context, alertID string) (*domain.Alert, error)
	Resolve(ctx context.Context, alertID string) (*domain.Alert, error)
}

// ListAlertsRequest 查询告警列表请求
type ListAlertsRequest struct {
	User   *domain.User
	Type   string // 可选：error, warning, info
	Status string // 可选：active, acknowledged, resolved
	Page   int
	Size   int
}

// ListAlertsResponse 查询告警列表响应
type ListAlertsResponse struct {
	Items []domain.Alert
	Total int
}

type alertService struct {
	repos  *repository.Repos
	scope  ScopeService
	logger *zap.Logger
}

// NewAlertService 创建 AlertService 实例
func NewAlertService(repos *repository.Repos, scope ScopeService, logger *zap.Logger) AlertService {
	return &alertService{repos: repos, scope: scope, logger: logger}
}

func (s *alertService) ListAlerts(ctx context.Context, req ListAlertsRequest) (*ListAlertsResponse, error) {
	visible := s.scope.VisibleAlerts(ctx, req.User)

	matched := make([]domain.Alert, 0, len(visible))
	for _, a := range visible {
		if req.Type != "" && a.Type != req.Type {
			continue
		}
		if req.Status != "" && a.Status != req.Status {
			continue
		}
		matched = append(matched, a)
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.Size
	if size <= 0 {
		size = 50
	}
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return &ListAlertsResponse{Items: matched[start:end], Total: len(matched)}, nil
}

func (s *alertService) Acknowledge(ctx context.Context, alertID string) (*domain.Alert, error) {
	a, err := s.repos.Alerts.SetStatus(ctx, alertID, domain.AlertStatusAcknowledged)
	if err != nil {
		return nil, err
	}
	s.logger.Info("alert acknowledged", zap.String("alert_id", alertID))
	return a, nil
}

func (s *alertService) Resolve(ctx context.Context, alertID string) (*domain.Alert, error) {
	a, err := s.repos.Alerts.SetStatus(ctx, alertID, domain.AlertStatusResolved)
	if err != nil {
		return nil, err
	}
	s.logger.Info("alert resolved", zap.String("alert_id", alertID))
	return a, nil
}
