package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// 日期选择预设
const (
	DatePresetLast7Days   = "last_7_days"
	DatePresetLast30Days  = "last_30_days"
	DatePresetLast3Months = "last_3_months"
	DatePresetLast6Months = "last_6_months"
	DatePresetAllData     = "all_data"
	DateSelectionCustom   = "custom"
)

// 自定义日期范围上限
const maxCustomRangeDays = 365

// DateSelection 报表日期选择：命名预设（相对 now 解析）或显式 custom 区间
type DateSelection struct {
	Preset string
	Start  time.Time // 仅 custom
	End    time.Time // 仅 custom
}

// ReportFilters 报表过滤条件，全部为 AND 组合；空串或 "all" 表示不过滤
type ReportFilters struct {
	SiteID     string
	DeviceType string
	Status     string
	IssueType  string // 设备健康度（healthy/degraded/faulty）
	DeviceID   string // 可选：单设备
}

// GenerateRequest 报表生成请求
type GenerateRequest struct {
	ReportType  string
	Dates       DateSelection
	Filters     ReportFilters
	SiteScope   []string // 空 = 不限制（admin）
	GeneratedBy string
}

// GeneratedReport 生成结果：二进制内容 + 文件名。
// 写入历史是调用方单独的一步，生成本身无副作用
type GeneratedReport struct {
	Content        []byte
	FileName       string
	DateRangeLabel string
}

// ReportService 报表生成服务接口
type ReportService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedReport, error)
}

type reportService struct {
	repos  *repository.Repos
	clock  Clock
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repos *repository.Repos, clock Clock, logger *zap.Logger) ReportService {
	return &reportService{repos: repos, clock: clock, logger: logger}
}

// ValidateCustomRange 自定义日期范围校验（调用方在生成前执行）。
// 三种失败各有独立消息：start > end、end 在未来、跨度超过 365 天
func ValidateCustomRange(start, end, now time.Time) error {
	if start.After(end) {
		return ErrStartAfterEnd
	}
	if end.After(now) {
		return ErrEndInFuture
	}
	if end.Sub(start) > maxCustomRangeDays*24*time.Hour {
		return ErrRangeTooWide
	}
	return nil
}

// resolveDateRange 将日期选择解析为 [start, end] 与文件名用的标签
func resolveDateRange(sel DateSelection, now time.Time) (time.Time, time.Time, string, error) {
	switch sel.Preset {
	case DatePresetLast7Days:
		return now.AddDate(0, 0, -7), now, sel.Preset, nil
	case DatePresetLast30Days:
		return now.AddDate(0, 0, -30), now, sel.Preset, nil
	case DatePresetLast3Months:
		return now.AddDate(0, -3, 0), now, sel.Preset, nil
	case DatePresetLast6Months:
		return now.AddDate(0, -6, 0), now, sel.Preset, nil
	case DatePresetAllData:
		return time.Time{}, now, sel.Preset, nil
	case DateSelectionCustom:
		label := sel.Start.Format("20060102") + "-" + sel.End.Format("20060102")
		return sel.Start, sel.End, label, nil
	default:
		return time.Time{}, time.Time{}, "", &ValidationError{msg: fmt.Sprintf("unknown date preset %q", sel.Preset)}
	}
}

// Generate 生成单表 xlsx 报表；匹配结果为空时返回 ErrNoData，不产出空文件
func (s *reportService) Generate(ctx context.Context, req GenerateRequest) (*GeneratedReport, error) {
	now := s.clock.Now()

	// 1. 解析日期窗口
	start, end, label, err := resolveDateRange(req.Dates, now)
	if err != nil {
		return nil, err
	}

	// 2. 站点范围 + 属性过滤（先不管日期）
	devices := filterDevices(s.repos.Devices.Snapshot(ctx), req.SiteScope, req.Filters)

	// 3. last_seen 必须落在窗口内。单一时间戳无法反映窗口内的历史在线情况，
	//    窗口外 last_seen 的设备会从所有报表类型中消失（见 DESIGN.md）
	inWindow := devices[:0]
	for _, d := range devices {
		if withinWindow(d.LastSeen, start, end) {
			inWindow = append(inWindow, d)
		}
	}
	devices = inWindow

	// 4. 工单按 created_at 独立过滤
	tickets := make([]domain.Ticket, 0)
	for _, t := range s.repos.Tickets.Snapshot(ctx) {
		if withinWindow(t.CreatedAt, start, end) {
			tickets = append(tickets, t)
		}
	}

	// 5. 按报表类型生成行
	siteNames := s.siteNameIndex(ctx)
	headers, rows := buildReportRows(req.ReportType, devices, tickets, siteNames, start, end)
	if headers == nil {
		return nil, &ValidationError{msg: fmt.Sprintf("unknown report type %q", req.ReportType)}
	}

	// 6. 空结果拒绝生成
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	// 7. 序列化
	content, err := buildWorkbook(reportSheetName(req.ReportType), headers, rows)
	if err != nil {
		s.logger.Error("report serialization failed",
			zap.String("report_type", req.ReportType),
			zap.Error(err))
		return nil, fmt.Errorf("serialize report: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s_generated%s.xlsx",
		strings.ToUpper(req.ReportType), label, now.Format("20060102_150405"))

	s.logger.Info("report generated",
		zap.String("report_type", req.ReportType),
		zap.String("file_name", fileName),
		zap.Int("rows", len(rows)),
		zap.Int("size_bytes", len(content)))

	return &GeneratedReport{Content: content, FileName: fileName, DateRangeLabel: label}, nil
}

// filterDevices 站点范围限制 + 属性 AND 过滤
func filterDevices(devices []domain.Device, siteScope []string, f ReportFilters) []domain.Device {
	scope := make(map[string]struct{}, len(siteScope))
	for _, id := range siteScope {
		scope[id] = struct{}{}
	}
	out := make([]domain.Device, 0, len(devices))
	for _, d := range devices {
		if len(scope) > 0 {
			if _, ok := scope[d.SiteID]; !ok {
				continue
			}
		}
		if v := normalizeFilter(f.SiteID); v != "" && d.SiteID != v {
			continue
		}
		if v := normalizeFilter(f.DeviceType); v != "" && d.Type != v {
			continue
		}
		if v := normalizeFilter(f.Status); v != "" && d.Status != v {
			continue
		}
		if v := normalizeFilter(f.IssueType); v != "" && d.Health != v {
			continue
		}
		if v := normalizeFilter(f.DeviceID); v != "" && d.DeviceID != v {
			continue
		}
		out = append(out, d)
	}
	return out
}

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == "all" {
		return ""
	}
	return v
}

// withinWindow 闭区间判断；start 为零值表示不设下界（all_data）
func withinWindow(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	return !t.After(end)
}

func (s *reportService) siteNameIndex(ctx context.Context) map[string]string {
	names := map[string]string{}
	for _, site := range s.repos.Sites.Snapshot(ctx) {
		names[site.SiteID] = site.Name
	}
	return names
}
