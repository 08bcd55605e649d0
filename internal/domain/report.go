package domain

import "time"

// 报表类型
const (
	ReportTypeConsolidated          = "consolidated"
	ReportTypeDVRNVRHealth          = "dvr_nvr_health"
	ReportTypeCameraHealth          = "camera_health"
	ReportTypeHDDHealth             = "hdd_health"
	ReportTypeRecordingAvailability = "recording_availability"
	ReportTypeTicketLog             = "ticket_log"
)

// 报表历史状态
const (
	ReportStatusReady   = "ready"
	ReportStatusExpired = "expired"
)

// ReportHistoryItem 已生成报表的历史条目
// ready 条目超过保留期（30天）转为 expired 并释放句柄；
// HandleKey 为空表示二进制内容已释放（条目仍可见但不可下载原文件）
type ReportHistoryItem struct {
	ReportID       string
	Name           string
	ReportType     string
	Format         string // 固定 "xlsx"
	DateRangeLabel string
	GeneratedBy    string
	GeneratedAt    time.Time
	SizeBytes      int
	Status         string // ready, expired
	HandleKey      string
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (r *ReportHistoryItem) ToJSON() map[string]any {
	return map[string]any{
		"report_id":        r.ReportID,
		"name":             r.Name,
		"report_type":      r.ReportType,
		"format":           r.Format,
		"date_range_label": r.DateRangeLabel,
		"generated_by":     r.GeneratedBy,
		"generated_at":     r.GeneratedAt.Format(time.RFC3339),
		"size_bytes":       r.SizeBytes,
		"status":           r.Status,
		"downloadable":     r.Status == ReportStatusReady && r.HandleKey != "",
	}
}
