package domain

import "time"

// 告警类型
const (
	AlertTypeError   = "error"
	AlertTypeWarning = "warning"
	AlertTypeInfo    = "info"
)

// 告警状态
// 流转方向为 active -> acknowledged -> resolved，但不做强制校验（见 DESIGN.md）
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert 设备告警领域模型
type Alert struct {
	AlertID   string
	Type      string // error, warning, info
	Status    string // active, acknowledged, resolved
	Message   string
	DeviceID  string
	Timestamp time.Time
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (a *Alert) ToJSON() map[string]any {
	return map[string]any{
		"alert_id":  a.AlertID,
		"type":      a.Type,
		"status":    a.Status,
		"message":   a.Message,
		"device_id": a.DeviceID,
		"timestamp": a.Timestamp.Format(time.RFC3339),
	}
}
