package domain

import "time"

// 用户角色
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleTechnician = "technician"
	RoleViewer     = "viewer"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User 用户领域模型（内存集合）
// admin 角色不受 assigned_sites 限制，可见全部数据
type User struct {
	UserID        string
	Name          string
	Email         string
	Role          string   // admin, manager, technician, viewer
	AssignedSites []string // site_id 列表（admin 忽略）
	Status        string   // active, inactive
	CreatedAt     time.Time
}

// IsAdmin 是否为管理员（不受站点范围限制）
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (u *User) ToJSON() map[string]any {
	sites := u.AssignedSites
	if sites == nil {
		sites = []string{}
	}
	return map[string]any{
		"user_id":        u.UserID,
		"name":           u.Name,
		"email":          u.Email,
		"role":           u.Role,
		"assigned_sites": sites,
		"status":         u.Status,
		"created_at":     u.CreatedAt.Format(time.RFC3339),
	}
}
