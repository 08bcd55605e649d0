package service

import (
	"context"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// ScopeService 角色范围可见性过滤
// 纯投影，按需重算（pull 模型）：不缓存派生视图，也绝不反向修改原始集合。
// 可见性链：assigned_sites -> 可见站点 -> 可见设备 -> 可见工单/告警/通知。
type ScopeService interface {
	VisibleSites(ctx context.Context, user *domain.User) []domain.Site
	VisibleDevices(ctx context.Context, user *domain.User) []domain.Device
	VisibleTickets(ctx context.Context, user *domain.User) []domain.Ticket
	VisibleAlerts(ctx context.Context, user *domain.User) []domain.Alert
	VisibleNotifications(ctx context.Context, user *domain.User) []domain.Notification
	// SiteScope 报表生成用的站点范围：admin 返回空（不限制），其余返回 assigned_sites
	SiteScope(user *domain.User) []string
}

type scopeService struct {
	repos  *repository.Repos
	logger *zap.Logger
}

func NewScopeService(repos *repository.Repos, logger *zap.Logger) ScopeService {
	return &scopeService{repos: repos, logger: logger}
}

func (s *scopeService) VisibleSites(ctx context.Context, user *domain.User) []domain.Site {
	return ScopeSites(user, s.repos.Sites.Snapshot(ctx))
}

func (s *scopeService) VisibleDevices(ctx context.Context, user *domain.User) []domain.Device {
	sites := ScopeSites(user, s.repos.Sites.Snapshot(ctx))
	return ScopeDevices(user, sites, s.repos.Devices.Snapshot(ctx))
}

func (s *scopeService) VisibleTickets(ctx context.Context, user *domain.User) []domain.Ticket {
	devices := s.VisibleDevices(ctx, user)
	return ScopeTickets(user, devices, s.repos.Tickets.Snapshot(ctx))
}

func (s *scopeService) VisibleAlerts(ctx context.Context, user *domain.User) []domain.Alert {
	devices := s.VisibleDevices(ctx, user)
	return ScopeAlerts(user, devices, s.repos.Alerts.Snapshot(ctx))
}

func (s *scopeService) VisibleNotifications(ctx context.Context, user *domain.User) []domain.Notification {
	devices := s.VisibleDevices(ctx, user)
	return ScopeNotifications(user, devices, s.repos.Notifications.Snapshot(ctx))
}

func (s *scopeService) SiteScope(user *domain.User) []string {
	if user == nil {
		return nil
	}
	if user.IsAdmin() {
		return nil
	}
	return user.AssignedSites
}

// ---- pure projections ----

// ScopeSites filters sites to the user's assignment. nil user sees
// nothing; admin sees everything.
func ScopeSites(user *domain.User, sites []domain.Site) []domain.Site {
	if user == nil {
		return []domain.Site{}
	}
	if user.IsAdmin() {
		return sites
	}
	assigned := make(map[string]struct{}, len(user.AssignedSites))
	for _, id := range user.AssignedSites {
		assigned[id] = struct{}{}
	}
	out := make([]domain.Site, 0, len(sites))
	for _, s := range sites {
		if _, ok := assigned[s.SiteID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ScopeDevices derives device visibility transitively through the
// VISIBLE sites set, not the user's raw site list. A device orphaned
// from any known site is invisible to non-admins.
func ScopeDevices(user *domain.User, visibleSites []domain.Site, devices []domain.Device) []domain.Device {
	if user == nil {
		return []domain.Device{}
	}
	if user.IsAdmin() {
		return devices
	}
	siteIDs := make(map[string]struct{}, len(visibleSites))
	for _, s := range visibleSites {
		siteIDs[s.SiteID] = struct{}{}
	}
	out := make([]domain.Device, 0, len(devices))
	for _, d := range devices {
		if _, ok := siteIDs[d.SiteID]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ScopeTickets is the second transitive hop: ticket visibility follows
// the visible-devices set.
func ScopeTickets(user *domain.User, visibleDevices []domain.Device, tickets []domain.Ticket) []domain.Ticket {
	if user == nil {
		return []domain.Ticket{}
	}
	if user.IsAdmin() {
		return tickets
	}
	deviceIDs := deviceIDSet(visibleDevices)
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if _, ok := deviceIDs[t.DeviceID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ScopeAlerts mirrors ScopeTickets for alerts.
func ScopeAlerts(user *domain.User, visibleDevices []domain.Device, alerts []domain.Alert) []domain.Alert {
	if user == nil {
		return []domain.Alert{}
	}
	if user.IsAdmin() {
		return alerts
	}
	deviceIDs := deviceIDSet(visibleDevices)
	out := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := deviceIDs[a.DeviceID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ScopeNotifications scopes notifications through their alert's device.
func ScopeNotifications(user *domain.User, visibleDevices []domain.Device, notifications []domain.Notification) []domain.Notification {
	if user == nil {
		return []domain.Notification{}
	}
	if user.IsAdmin() {
		return notifications
	}
	deviceIDs := deviceIDSet(visibleDevices)
	out := make([]domain.Notification, 0, len(notifications))
	for _, n := range notifications {
		if _, ok := deviceIDs[n.DeviceID]; ok {
			out = append(out, n)
		}
	}
	return out
}

func deviceIDSet(devices []domain.Device) map[string]struct{} {
	ids := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		ids[d.DeviceID] = struct{}{}
	}
	return ids
}
