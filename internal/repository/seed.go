package repository

import (
	"context"
	"fmt"
	"time"

	"fleetwatch/internal/domain"
)

// Repos bundles the memory repos so seeding and wiring stay in one place.
type Repos struct {
	Sites         *MemorySitesRepo
	Devices       *MemoryDevicesRepo
	Tickets       *MemoryTicketsRepo
	Alerts        *MemoryAlertsRepo
	Notifications *MemoryNotificationsRepo
	Users         *MemoryUsersRepo
}

func NewRepos() *Repos {
	return &Repos{
		Sites:         NewMemorySitesRepo(),
		Devices:       NewMemoryDevicesRepo(),
		Tickets:       NewMemoryTicketsRepo(),
		Alerts:        NewMemoryAlertsRepo(),
		Notifications: NewMemoryNotificationsRepo(),
		Users:         NewMemoryUsersRepo(),
	}
}

// Seed installs the static demo fleet. IDs are fixed so dev sessions and
// tests can reference them. Timestamps are spread relative to now.
// Notifications are derived from alerts exactly once, here; later alert
// changes do not resynchronize them.
func Seed(ctx context.Context, repos *Repos, now time.Time) {
	seedSites(ctx, repos.Sites)
	seedDevices(ctx, repos.Devices, now)
	seedUsers(ctx, repos.Users, now)
	seedTickets(ctx, repos.Tickets, now)
	alerts := seedAlerts(ctx, repos.Alerts, now)

	notifications := make([]domain.Notification, 0, len(alerts))
	for i, a := range alerts {
		notifications = append(notifications, domain.Notification{
			NotificationID: fmt.Sprintf("ntf-%03d", i+1),
			AlertID:        a.AlertID,
			DeviceID:       a.DeviceID,
			Message:        a.Message,
			Read:           false,
			CreatedAt:      a.Timestamp,
		})
	}
	repos.Notifications.Install(ctx, notifications)
}

func seedSites(ctx context.Context, repo *MemorySitesRepo) {
	sites := []domain.Site{
		{SiteID: "site-001", Name: "HQ Campus", Address: "1 Corporate Dr", City: "Denver", Status: domain.SiteStatusActive},
		{SiteID: "site-002", Name: "North Warehouse", Address: "410 Logistics Pkwy", City: "Boulder", Status: domain.SiteStatusActive},
		{SiteID: "site-003", Name: "Retail Store 12", Address: "88 Main St", City: "Aurora", Status: domain.SiteStatusMaintenance},
		{SiteID: "site-004", Name: "Data Center East", Address: "2 Fiber Way", City: "Colorado Springs", Status: domain.SiteStatusActive},
		{SiteID: "site-005", Name: "Parking Structure B", Address: "55 Garage Ln", City: "Denver", Status: domain.SiteStatusActive},
	}
	for _, s := range sites {
		_, _ = repo.Create(ctx, s)
	}
}

func seedDevices(ctx context.Context, repo *MemoryDevicesRepo, now time.Time) {
	cam := func(id, name, siteID, status, health string, recording bool, lastSeenAgo time.Duration, uptime float64) domain.Device {
		return domain.Device{
			DeviceID: id, Name: name, SiteID: siteID, Type: domain.DeviceTypeCamera,
			Status: status, Health: health, Recording: recording,
			LastSeen: now.Add(-lastSeenAgo), IPAddress: "10.0." + id[len(id)-2:] + ".10",
			Model: "AXIS P3265", Firmware: "11.9.60", Resolution: "2688x1512", UptimePercent: uptime,
		}
	}
	recorder := func(id, name, siteID, devType, status, hddStatus string, capGB, usedGB, cams int, lastSeenAgo time.Duration) domain.Device {
		return domain.Device{
			DeviceID: id, Name: name, SiteID: siteID, Type: devType,
			Status: status, Health: domain.DeviceHealthHealthy, Recording: true,
			LastSeen: now.Add(-lastSeenAgo), IPAddress: "10.1." + id[len(id)-2:] + ".1",
			Model: "HIK DS-7732NI", Firmware: "V4.62.210",
			HDDStatus: hddStatus, HDDCapacityGB: capGB, HDDUsedGB: usedGB, CameraCount: cams,
		}
	}

	devices := []domain.Device{
		cam("dev-001", "Lobby Cam 1", "site-001", domain.DeviceStatusOnline, domain.DeviceHealthHealthy, true, 2*time.Minute, 99.2),
		cam("dev-002", "Lobby Cam 2", "site-001", domain.DeviceStatusOnline, domain.DeviceHealthHealthy, true, 5*time.Minute, 98.7),
		cam("dev-003", "Dock Cam", "site-002", domain.DeviceStatusWarning, domain.DeviceHealthDegraded, true, 40*time.Minute, 91.4),
		cam("dev-004", "Aisle Cam 3", "site-003", domain.DeviceStatusOffline, domain.DeviceHealthFaulty, false, 72*time.Hour, 62.0),
		cam("dev-005", "Cage Row Cam", "site-004", domain.DeviceStatusOnline, domain.DeviceHealthHealthy, true, 1*time.Minute, 99.9),
		cam("dev-006", "Level 1 Ramp Cam", "site-005", domain.DeviceStatusOnline, domain.DeviceHealthHealthy, true, 3*time.Minute, 97.5),
		cam("dev-007", "Level 2 Ramp Cam", "site-005", domain.DeviceStatusWarning, domain.DeviceHealthDegraded, true, 90*time.Minute, 88.1),
		cam("dev-008", "Roof Exit Cam", "site-001", domain.DeviceStatusOnline, domain.DeviceHealthHealthy, true, 7*time.Minute, 99.0),
		recorder("dev-009", "HQ NVR", "site-001", domain.DeviceTypeNVR, domain.DeviceStatusOnline, domain.HDDStatusOK, 8000, 5100, 16, 1*time.Minute),
		recorder("dev-010", "Warehouse DVR", "site-002", domain.DeviceTypeDVR, domain.DeviceStatusOnline, domain.HDDStatusDegraded, 4000, 3850, 8, 4*time.Minute),
		recorder("dev-011", "Store NVR", "site-003", domain.DeviceTypeNVR, domain.DeviceStatusOffline, domain.HDDStatusFailed, 2000, 1990, 4, 96*time.Hour),
		recorder("dev-012", "Garage NVR", "site-005", domain.DeviceTypeNVR, domain.DeviceStatusOnline, domain.HDDStatusOK, 4000, 2200, 6, 2*time.Minute),
		{
			DeviceID: "dev-013", Name: "Core PoE Switch", SiteID: "site-004", Type: domain.DeviceTypeSwitch,
			Status: domain.DeviceStatusOnline, Health: domain.DeviceHealthHealthy,
			LastSeen: now.Add(-30 * time.Second), IPAddress: "10.1.13.1", Model: "CAT 9300", Firmware: "17.9.4",
		},
	}
	for _, d := range devices {
		_, _ = repo.Create(ctx, d)
	}
}

func seedUsers(ctx context.Context, repo *MemoryUsersRepo, now time.Time) {
	users := []domain.User{
		{UserID: "usr-001", Name: "Ade Okonkwo", Email: "ade@fleetwatch.local", Role: domain.RoleAdmin, Status: domain.UserStatusActive, CreatedAt: now.Add(-400 * 24 * time.Hour)},
		{UserID: "usr-002", Name: "Marta Villanueva", Email: "marta@fleetwatch.local", Role: domain.RoleManager, AssignedSites: []string{"site-001", "site-002"}, Status: domain.UserStatusActive, CreatedAt: now.Add(-300 * 24 * time.Hour)},
		{UserID: "usr-003", Name: "Dev Prasad", Email: "dev@fleetwatch.local", Role: domain.RoleTechnician, AssignedSites: []string{"site-002", "site-003", "site-004"}, Status: domain.UserStatusActive, CreatedAt: now.Add(-120 * 24 * time.Hour)},
		{UserID: "usr-004", Name: "Lena Fischer", Email: "lena@fleetwatch.local", Role: domain.RoleViewer, AssignedSites: []string{"site-005"}, Status: domain.UserStatusActive, CreatedAt: now.Add(-60 * 24 * time.Hour)},
	}
	for _, u := range users {
		_, _ = repo.Create(ctx, u)
	}
}

func seedTickets(ctx context.Context, repo *MemoryTicketsRepo, now time.Time) {
	tickets := []domain.Ticket{
		{
			TicketID: "tkt-001", Title: "Aisle Cam 3 offline", Description: "Camera unreachable since Friday, suspect PoE injector.",
			DeviceID: "dev-004", DeviceName: "Aisle Cam 3", SiteName: "Retail Store 12",
			Priority: domain.TicketPriorityCritical, Status: domain.TicketStatusInProgress, Assignee: "Dev Prasad",
			CreatedAt: now.Add(-70 * time.Hour), UpdatedAt: now.Add(-20 * time.Hour),
			Comments: []domain.TicketComment{
				{CommentID: "cmt-001", Author: "Dev Prasad", Text: "Injector swapped, still dark. Escalating to cabling.", CreatedAt: now.Add(-20 * time.Hour)},
			},
		},
		{
			TicketID: "tkt-002", Title: "Warehouse DVR HDD near capacity", Description: "Disk at 96%, retention at risk.",
			DeviceID: "dev-010", DeviceName: "Warehouse DVR", SiteName: "North Warehouse",
			Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, Assignee: "Marta Villanueva",
			CreatedAt: now.Add(-30 * time.Hour), UpdatedAt: now.Add(-30 * time.Hour),
		},
		{
			TicketID: "tkt-003", Title: "Level 2 ramp image flicker", Description: "Intermittent flicker at dusk, likely IR cut filter.",
			DeviceID: "dev-007", DeviceName: "Level 2 Ramp Cam", SiteName: "Parking Structure B",
			Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusPending, Assignee: "Dev Prasad",
			CreatedAt: now.Add(-6 * 24 * time.Hour), UpdatedAt: now.Add(-2 * 24 * time.Hour),
		},
		{
			TicketID: "tkt-004", Title: "Store NVR failed disk", Description: "HDD SMART failure, RMA requested.",
			DeviceID: "dev-011", DeviceName: "Store NVR", SiteName: "Retail Store 12",
			Priority: domain.TicketPriorityCritical, Status: domain.TicketStatusOpen, Assignee: "",
			CreatedAt: now.Add(-90 * time.Hour), UpdatedAt: now.Add(-90 * time.Hour),
		},
	}
	for _, t := range tickets {
		_, _ = repo.Create(ctx, t)
	}
}

func seedAlerts(ctx context.Context, repo *MemoryAlertsRepo, now time.Time) []domain.Alert {
	alerts := []domain.Alert{
		{AlertID: "alr-001", Type: domain.AlertTypeError, Status: domain.AlertStatusActive, Message: "Aisle Cam 3 connection lost", DeviceID: "dev-004", Timestamp: now.Add(-72 * time.Hour)},
		{AlertID: "alr-002", Type: domain.AlertTypeWarning, Status: domain.AlertStatusActive, Message: "Warehouse DVR disk usage above 95%", DeviceID: "dev-010", Timestamp: now.Add(-31 * time.Hour)},
		{AlertID: "alr-003", Type: domain.AlertTypeError, Status: domain.AlertStatusAcknowledged, Message: "Store NVR HDD failure detected", DeviceID: "dev-011", Timestamp: now.Add(-95 * time.Hour)},
		{AlertID: "alr-004", Type: domain.AlertTypeWarning, Status: domain.AlertStatusActive, Message: "Level 2 Ramp Cam degraded video quality", DeviceID: "dev-007", Timestamp: now.Add(-26 * time.Hour)},
		{AlertID: "alr-005", Type: domain.AlertTypeInfo, Status: domain.AlertStatusResolved, Message: "HQ NVR firmware updated", DeviceID: "dev-009", Timestamp: now.Add(-10 * 24 * time.Hour)},
	}
	for _, a := range alerts {
		_, _ = repo.Create(ctx, a)
	}
	return alerts
}
