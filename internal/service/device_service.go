package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// DeviceService 设备管理服务接口
type DeviceService interface {
	// 查询（应用角色范围过滤）
	ListDevices(ctx context.Context, req ListDevicesRequest) (*ListDevicesResponse, error)
	GetDevice(ctx context.Context, user *domain.User, deviceID string) (*domain.Device, error)

	// 变更
	CreateDevice(ctx context.Context, device domain.Device) (*domain.Device, error)
	UpdateDevice(ctx context.Context, deviceID string, patch map[string]any) (*domain.Device, error)
	// DeleteDevice 删除设备；不级联删除其工单/告警
	DeleteDevice(ctx context.Context, deviceID string) error
}

// ListDevicesRequest 查询设备列表请求
type ListDevicesRequest struct {
	User    *domain.User // 当前用户（范围过滤依据）
	SiteID  string       // 可选
	Type    string       // 可选：camera, nvr, dvr, switch
	Status  string       // 可选：online, offline, warning
	Keyword string       // 可选：按名称/IP/型号搜索
	Page    int          // 可选，默认 1
	Size    int          // 可选，默认 20
}

// ListDevicesResponse 查询设备列表响应
type ListDevicesResponse struct {
	Items []domain.Device
	Total int
}

type deviceService struct {
	repos  *repository.Repos
	scope  ScopeService
	logger *zap.Logger
}

// NewDeviceService 创建 DeviceService 实例
func NewDeviceService(repos *repository.Repos, scope ScopeService, logger *zap.Logger) DeviceService {
	return &deviceService{repos: repos, scope: scope, logger: logger}
}

// ListDevices 查询设备列表（先做范围过滤，再做属性过滤与分页）
func (s *deviceService) ListDevices(ctx context.Context, req ListDevicesRequest) (*ListDevicesResponse, error) {
	// 1. 范围过滤
	visible := s.scope.VisibleDevices(ctx, req.User)

	// 2. 属性过滤
	matched := make([]domain.Device, 0, len(visible))
	for _, d := range visible {
		if req.SiteID != "" && d.SiteID != req.SiteID {
			continue
		}
		if req.Type != "" && d.Type != req.Type {
			continue
		}
		if req.Status != "" && d.Status != req.Status {
			continue
		}
		if kw := strings.ToLower(strings.TrimSpace(req.Keyword)); kw != "" {
			if !strings.Contains(strings.ToLower(d.Name), kw) &&
				!strings.Contains(strings.ToLower(d.IPAddress), kw) &&
				!strings.Contains(strings.ToLower(d.Model), kw) {
				continue
			}
		}
		matched = append(matched, d)
	}

	// 3. 分页
	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.Size
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return &ListDevicesResponse{Items: matched[start:end], Total: len(matched)}, nil
}

// GetDevice 查询单个设备；范围外的设备对非 admin 表现为不存在
func (s *deviceService) GetDevice(ctx context.Context, user *domain.User, deviceID string) (*domain.Device, error) {
	for _, d := range s.scope.VisibleDevices(ctx, user) {
		if d.DeviceID == deviceID {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *deviceService) CreateDevice(ctx context.Context, device domain.Device) (*domain.Device, error) {
	created, err := s.repos.Devices.Create(ctx, device)
	if err != nil {
		return nil, err
	}
	s.logger.Info("device created",
		zap.String("device_id", created.DeviceID),
		zap.String("site_id", created.SiteID),
		zap.String("type", created.Type))
	return created, nil
}

func (s *deviceService) UpdateDevice(ctx context.Context, deviceID string, patch map[string]any) (*domain.Device, error) {
	updated, err := s.repos.Devices.Update(ctx, deviceID, patch)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *deviceService) DeleteDevice(ctx context.Context, deviceID string) error {
	if err := s.repos.Devices.Delete(ctx, deviceID); err != nil {
		return err
	}
	s.logger.Info("device deleted", zap.String("device_id", deviceID))
	return nil
}
