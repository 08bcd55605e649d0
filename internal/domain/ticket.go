package domain

import "time"

// 工单优先级
const (
	TicketPriorityCritical = "critical"
	TicketPriorityHigh     = "high"
	TicketPriorityMedium   = "medium"
	TicketPriorityLow      = "low"
)

// 工单状态
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusPending    = "pending"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// TicketComment 工单评论（按创建时间有序）
type TicketComment struct {
	CommentID string
	Author    string
	Text      string
	CreatedAt time.Time
}

// Ticket 运维工单领域模型
// DeviceName/SiteName 为冗余字段（创建时快照，不随设备改名刷新）
type Ticket struct {
	TicketID    string
	Title       string
	Description string
	DeviceID    string
	DeviceName  string
	SiteName    string
	Priority    string // critical, high, medium, low
	Status      string // open, in_progress, pending, resolved, closed
	Assignee    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Comments    []TicketComment
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (t *Ticket) ToJSON() map[string]any {
	comments := make([]map[string]any, 0, len(t.Comments))
	for _, c := range t.Comments {
		comments = append(comments, map[string]any{
			"comment_id": c.CommentID,
			"author":     c.Author,
			"text":       c.Text,
			"created_at": c.CreatedAt.Format(time.RFC3339),
		})
	}
	return map[string]any{
		"ticket_id":   t.TicketID,
		"title":       t.Title,
		"description": t.Description,
		"device_id":   t.DeviceID,
		"device_name": t.DeviceName,
		"site_name":   t.SiteName,
		"priority":    t.Priority,
		"status":      t.Status,
		"assignee":    t.Assignee,
		"created_at":  t.CreatedAt.Format(time.RFC3339),
		"updated_at":  t.UpdatedAt.Format(time.RFC3339),
		"comments":    comments,
	}
}
