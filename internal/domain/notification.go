package domain

import "time"

// Notification 通知领域模型
// 启动时从告警一次性派生（1:1），之后不随告警状态变化重新同步；
// read 标记独立于告警状态
type Notification struct {
	NotificationID string
	AlertID        string
	DeviceID       string
	Message        string
	Read           bool
	CreatedAt      time.Time
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (n *Notification) ToJSON() map[string]any {
	return map[string]any{
		"notification_id": n.NotificationID,
		"alert_id":        n.AlertID,
		"device_id":       n.DeviceID,
		"message":         n.Message,
		"read":            n.Read,
		"created_at":      n.CreatedAt.Format(time.RFC3339),
	}
}
