package service

import (
	"fmt"
	"time"

	"fleetwatch/internal/domain"
)

// buildReportRows 按报表类型展开行；未知类型返回 (nil, nil)
func buildReportRows(reportType string, devices []domain.Device, tickets []domain.Ticket,
	siteNames map[string]string, start, end time.Time) ([]string, [][]any) {

	switch reportType {
	case domain.ReportTypeConsolidated:
		return consolidatedRows(devices, tickets, siteNames)
	case domain.ReportTypeDVRNVRHealth:
		return dvrNvrHealthRows(devices, siteNames)
	case domain.ReportTypeCameraHealth:
		return cameraHealthRows(devices, siteNames)
	case domain.ReportTypeHDDHealth:
		return hddHealthRows(devices, siteNames)
	case domain.ReportTypeRecordingAvailability:
		return recordingAvailabilityRows(devices, siteNames, start, end)
	case domain.ReportTypeTicketLog:
		return ticketLogRows(tickets)
	default:
		return nil, nil
	}
}

func reportSheetName(reportType string) string {
	switch reportType {
	case domain.ReportTypeConsolidated:
		return "Consolidated"
	case domain.ReportTypeDVRNVRHealth:
		return "DVR NVR Health"
	case domain.ReportTypeCameraHealth:
		return "Camera Health"
	case domain.ReportTypeHDDHealth:
		return "HDD Health"
	case domain.ReportTypeRecordingAvailability:
		return "Recording Availability"
	case domain.ReportTypeTicketLog:
		return "Ticket Log"
	default:
		return "Report"
	}
}

func siteName(siteNames map[string]string, siteID string) string {
	if name, ok := siteNames[siteID]; ok {
		return name
	}
	return siteID
}

func consolidatedRows(devices []domain.Device, tickets []domain.Ticket, siteNames map[string]string) ([]string, [][]any) {
	headers := []string{"Site", "Device Name", "Type", "Status", "Health", "Recording", "Last Seen", "Open Tickets"}

	openByDevice := map[string]int{}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusPending:
			openByDevice[t.DeviceID]++
		}
	}

	rows := make([][]any, 0, len(devices))
	for _, d := range devices {
		recording := "No"
		if d.Recording {
			recording = "Yes"
		}
		rows = append(rows, []any{
			siteName(siteNames, d.SiteID), d.Name, d.Type, d.Status, d.Health,
			recording, d.LastSeen.Format("2006-01-02 15:04:05"), openByDevice[d.DeviceID],
		})
	}
	return headers, rows
}

func dvrNvrHealthRows(devices []domain.Device, siteNames map[string]string) ([]string, [][]any) {
	headers := []string{"Site", "Device Name", "Type", "Status", "HDD Status", "HDD Capacity (GB)", "HDD Used (GB)", "Camera Count", "Last Seen"}
	rows := make([][]any, 0)
	for _, d := range devices {
		if !d.IsRecorder() {
			continue
		}
		rows = append(rows, []any{
			siteName(siteNames, d.SiteID), d.Name, d.Type, d.Status, d.HDDStatus,
			d.HDDCapacityGB, d.HDDUsedGB, d.CameraCount, d.LastSeen.Format("2006-01-02 15:04:05"),
		})
	}
	return headers, rows
}

func cameraHealthRows(devices []domain.Device, siteNames map[string]string) ([]string, [][]any) {
	headers := []string{"Site", "Camera Name", "Status", "Health", "Resolution", "Uptime %", "Firmware", "Last Seen"}
	rows := make([][]any, 0)
	for _, d := range devices {
		if d.Type != domain.DeviceTypeCamera {
			continue
		}
		rows = append(rows, []any{
			siteName(siteNames, d.SiteID), d.Name, d.Status, d.Health, d.Resolution,
			fmt.Sprintf("%.1f", d.UptimePercent), d.Firmware, d.LastSeen.Format("2006-01-02 15:04:05"),
		})
	}
	return headers, rows
}

func hddHealthRows(devices []domain.Device, siteNames map[string]string) ([]string, [][]any) {
	headers := []string{"Site", "Device Name", "Type", "HDD Status", "HDD Capacity (GB)", "HDD Used (GB)", "Used %", "Last Seen"}
	rows := make([][]any, 0)
	for _, d := range devices {
		if !d.IsRecorder() {
			continue
		}
		usedPercent := 0.0
		if d.HDDCapacityGB > 0 {
			usedPercent = float64(d.HDDUsedGB) / float64(d.HDDCapacityGB) * 100
		}
		rows = append(rows, []any{
			siteName(siteNames, d.SiteID), d.Name, d.Type, d.HDDStatus,
			d.HDDCapacityGB, d.HDDUsedGB, fmt.Sprintf("%.1f", usedPercent),
			d.LastSeen.Format("2006-01-02 15:04:05"),
		})
	}
	return headers, rows
}

func recordingAvailabilityRows(devices []domain.Device, siteNames map[string]string, start, end time.Time) ([]string, [][]any) {
	headers := []string{"Site", "Camera Name", "Monitored Days", "Available Days", "Missing Days", "Compliance %"}
	// all_data 没有下界，日历只看最近 30 天
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}
	rows := make([][]any, 0)
	for _, d := range devices {
		if d.Type != domain.DeviceTypeCamera {
			continue
		}
		cal := BuildRecordingCalendar(d.DeviceID, start, end)
		rows = append(rows, []any{
			siteName(siteNames, d.SiteID), d.Name, cal.TotalDays, cal.AvailableDays,
			cal.MissingDays, fmt.Sprintf("%.1f", cal.CompliancePercent()),
		})
	}
	return headers, rows
}

func ticketLogRows(tickets []domain.Ticket) ([]string, [][]any) {
	headers := []string{"Ticket ID", "Title", "Device", "Site", "Priority", "Status", "Assignee", "Created", "Updated", "Comments"}
	rows := make([][]any, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []any{
			t.TicketID, t.Title, t.DeviceName, t.SiteName, t.Priority, t.Status,
			t.Assignee, t.CreatedAt.Format("2006-01-02 15:04:05"),
			t.UpdatedAt.Format("2006-01-02 15:04:05"), len(t.Comments),
		})
	}
	return headers, rows
}
