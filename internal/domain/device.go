package domain

import "time"

// 设备类型
const (
	DeviceTypeCamera = "camera"
	DeviceTypeNVR    = "nvr"
	DeviceTypeDVR    = "dvr"
	DeviceTypeSwitch = "switch"
)

// 设备状态
const (
	DeviceStatusOnline  = "online"
	DeviceStatusOffline = "offline"
	DeviceStatusWarning = "warning"
)

// 设备健康度
const (
	DeviceHealthHealthy  = "healthy"
	DeviceHealthDegraded = "degraded"
	DeviceHealthFaulty   = "faulty"
)

// HDD 状态（仅 NVR/DVR）
const (
	HDDStatusOK       = "ok"
	HDDStatusDegraded = "degraded"
	HDDStatusFailed   = "failed"
)

// Device CCTV 设备领域模型
// 每台设备归属一个站点（SiteID）；删除设备不级联删除其工单/告警
type Device struct {
	DeviceID  string
	Name      string
	SiteID    string
	Type      string // camera, nvr, dvr, switch
	Status    string // online, offline, warning
	Health    string // healthy, degraded, faulty
	Recording bool
	LastSeen  time.Time

	// 网络/资产元数据
	IPAddress string
	Model     string
	Firmware  string

	// 仅摄像头
	Resolution    string
	UptimePercent float64

	// 仅 NVR/DVR
	HDDStatus     string
	HDDCapacityGB int
	HDDUsedGB     int
	CameraCount   int
}

// IsRecorder NVR 或 DVR
func (d *Device) IsRecorder() bool {
	return d.Type == DeviceTypeNVR || d.Type == DeviceTypeDVR
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (d *Device) ToJSON() map[string]any {
	m := map[string]any{
		"device_id":  d.DeviceID,
		"name":       d.Name,
		"site_id":    d.SiteID,
		"type":       d.Type,
		"status":     d.Status,
		"health":     d.Health,
		"recording":  d.Recording,
		"last_seen":  d.LastSeen.Format(time.RFC3339),
		"ip_address": d.IPAddress,
		"model":      d.Model,
		"firmware":   d.Firmware,
	}
	if d.Type == DeviceTypeCamera {
		m["resolution"] = d.Resolution
		m["uptime_percent"] = d.UptimePercent
	}
	if d.IsRecorder() {
		m["hdd_status"] = d.HDDStatus
		m["hdd_capacity_gb"] = d.HDDCapacityGB
		m["hdd_used_gb"] = d.HDDUsedGB
		m["camera_count"] = d.CameraCount
	}
	return m
}
