package domain

// 站点状态
const (
	SiteStatusActive      = "active"
	SiteStatusInactive    = "inactive"
	SiteStatusMaintenance = "maintenance"
)

// Site 站点领域模型（物理场所，设备归属于站点）
type Site struct {
	SiteID  string
	Name    string
	Address string
	City    string
	Status  string // active, inactive, maintenance
}

// ToJSON 转换为JSON格式（用于HTTP响应）
func (s *Site) ToJSON() map[string]any {
	return map[string]any{
		"site_id": s.SiteID,
		"name":    s.Name,
		"address": s.Address,
		"city":    s.City,
		"status":  s.Status,
	}
}
