package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.uber.org/zap"

	"fleetwatch/internal/config"
	"fleetwatch/internal/domain"
)

// HistoryService 报表历史：有界列表（最新在前）+ 保留期
// - 超出条数上限从尾部（最旧）淘汰并释放句柄
// - ready 条目超过保留期转为 expired 并释放句柄（定时扫描，启动时先扫一次）
// - 句柄释放一律延迟到状态提交之后（pending 队列），避免在同一次
//   状态变更中释放仍被引用的句柄
type HistoryService struct {
	mu      sync.Mutex
	items   []domain.ReportHistoryItem
	pending []string // release queue, flushed after the state commits

	handles   HandleStore
	clock     Clock
	limit     int
	retention time.Duration
	logger    *zap.Logger

	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// NewHistoryService 创建历史存储并启动过期扫描。
// 启动时立即执行一次扫描（配置了持久化种子时才有意义，空列表无事发生）
func NewHistoryService(handles HandleStore, clock Clock, cfg config.ReportConfig, logger *zap.Logger) *HistoryService {
	s := &HistoryService{
		handles:   handles,
		clock:     clock,
		limit:     cfg.HistoryLimit,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		logger:    logger,
		ticker:    time.NewTicker(cfg.SweepInterval),
		done:      make(chan struct{}),
	}
	s.Sweep(context.Background())
	go s.sweepLoop()
	return s
}

func (s *HistoryService) sweepLoop() {
	for {
		select {
		case <-s.ticker.C:
			s.Sweep(context.Background())
		case <-s.done:
			return
		}
	}
}

// Add 物化二进制内容为句柄并前插历史条目；原始缓冲不保留。
// 超出上限时淘汰尾部最旧条目并释放其句柄
func (s *HistoryService) Add(ctx context.Context, item domain.ReportHistoryItem, content []byte) domain.ReportHistoryItem {
	if item.ReportID == "" {
		item.ReportID = uuid.NewString()
	}
	if item.Format == "" {
		item.Format = "xlsx"
	}
	if item.GeneratedAt.IsZero() {
		item.GeneratedAt = s.clock.Now()
	}
	item.Status = domain.ReportStatusReady
	item.SizeBytes = len(content)
	item.HandleKey = s.handles.Materialize(content)

	s.mu.Lock()
	s.items = append([]domain.ReportHistoryItem{item}, s.items...)
	for len(s.items) > s.limit {
		evicted := s.items[len(s.items)-1]
		s.items = s.items[:len(s.items)-1]
		if evicted.HandleKey != "" {
			s.pending = append(s.pending, evicted.HandleKey)
		}
		s.logger.Info("report history item evicted",
			zap.String("report_id", evicted.ReportID),
			zap.Time("generated_at", evicted.GeneratedAt))
	}
	s.mu.Unlock()

	s.flushPending()
	return item
}

// List 历史条目快照（最新在前）
func (s *HistoryService) List(_ context.Context) []domain.ReportHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ReportHistoryItem, len(s.items))
	copy(out, s.items)
	return out
}

// Download 取回条目的二进制内容
// - expired: 返回 ErrExpiredResource，无静默回退
// - ready 但句柄已释放（与扫描竞争）: 用保留的元数据重建一份
//   仅含元数据的表格，不向用户暴露失败
func (s *HistoryService) Download(_ context.Context, reportID string) ([]byte, string, error) {
	s.mu.Lock()
	var item *domain.ReportHistoryItem
	for i := range s.items {
		if s.items[i].ReportID == reportID {
			item = &s.items[i]
			break
		}
	}
	if item == nil {
		s.mu.Unlock()
		return nil, "", ErrNotFoundHistory
	}
	snapshot := *item
	s.mu.Unlock()

	if snapshot.Status == domain.ReportStatusExpired {
		return nil, "", ErrExpiredResource
	}

	if snapshot.HandleKey != "" {
		if content, ok := s.handles.Resolve(snapshot.HandleKey); ok {
			return content, snapshot.Name, nil
		}
	}

	// 句柄缺失：重建元数据表格（ErrMissingHandle 在此被恢复）
	s.logger.Warn("report handle missing at download, rebuilding metadata sheet",
		zap.String("report_id", snapshot.ReportID),
		zap.Error(ErrMissingHandle))
	content, err := buildMetadataWorkbook(snapshot)
	if err != nil {
		return nil, "", err
	}
	return content, snapshot.Name, nil
}

// ClearHandle 显式释放单个条目的句柄；条目保持可见，状态不变
func (s *HistoryService) ClearHandle(_ context.Context, reportID string) error {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ReportID == reportID {
			if s.items[i].HandleKey != "" {
				s.pending = append(s.pending, s.items[i].HandleKey)
				s.items[i].HandleKey = ""
			}
			found = true
			break
		}
	}
	s.mu.Unlock()

	s.flushPending()
	if !found {
		return ErrNotFoundHistory
	}
	return nil
}

// Sweep 过期扫描：ready 且 now - generated_at 超过保留期的条目转为
// expired 并释放句柄。按生成时间判断，与下载次数/访问时间无关。
// 返回本次过期的条目数
func (s *HistoryService) Sweep(_ context.Context) int {
	now := s.clock.Now()

	s.mu.Lock()
	expired := 0
	for i := range s.items {
		if s.items[i].Status != domain.ReportStatusReady {
			continue
		}
		if now.Sub(s.items[i].GeneratedAt) <= s.retention {
			continue
		}
		s.items[i].Status = domain.ReportStatusExpired
		if s.items[i].HandleKey != "" {
			s.pending = append(s.pending, s.items[i].HandleKey)
			s.items[i].HandleKey = ""
		}
		expired++
	}
	s.mu.Unlock()

	s.flushPending()
	if expired > 0 {
		s.logger.Info("report history sweep expired items", zap.Int("count", expired))
	}
	return expired
}

// Close 停止扫描并无条件释放所有剩余句柄。幂等
func (s *HistoryService) Close() {
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)

		s.mu.Lock()
		for i := range s.items {
			if s.items[i].HandleKey != "" {
				s.pending = append(s.pending, s.items[i].HandleKey)
				s.items[i].HandleKey = ""
			}
		}
		s.mu.Unlock()

		s.flushPending()
	})
}

// flushPending drains the release queue outside the state lock.
func (s *HistoryService) flushPending() {
	s.mu.Lock()
	keys := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, k := range keys {
		s.handles.Release(k)
	}
}

// buildMetadataWorkbook 从保留的元数据字段重建一份最小表格
func buildMetadataWorkbook(item domain.ReportHistoryItem) ([]byte, error) {
	headers := []string{"Field", "Value"}
	rows := [][]any{
		{"Report ID", item.ReportID},
		{"Name", item.Name},
		{"Report Type", item.ReportType},
		{"Format", item.Format},
		{"Date Range", item.DateRangeLabel},
		{"Generated By", item.GeneratedBy},
		{"Generated At", item.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Original Size (bytes)", item.SizeBytes},
		{"Note", "original file content was released; metadata only"},
	}
	return buildWorkbook("Report Metadata", headers, rows)
}
