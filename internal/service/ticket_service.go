package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
)

// TicketService 工单服务接口
type TicketService interface {
	ListTickets(ctx context.Context, req ListTicketsRequest) (*ListTicketsResponse, error)
	GetTicket(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*domain.Ticket, error)
	// UpdateStatus / AddComment 都会刷新 updated_at
	UpdateStatus(ctx context.Context, ticketID, status string) (*domain.Ticket, error)
	AddComment(ctx context.Context, ticketID, author, text string) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, ticketID string) error
}

// ListTicketsRequest 查询工单列表请求
type ListTicketsRequest struct {
	User     *domain.User
	Status   string // 可选
	Priority string // 可选
	DeviceID string // 可选
	Page     int    // 可选，默认 1
	Size     int    // 可选，默认 20
}

// ListTicketsResponse 查询工单列表响应
type ListTicketsResponse struct {
	Items []domain.Ticket
	Total int
}

// CreateTicketRequest 创建工单请求
type CreateTicketRequest struct {
	Title       string
	Description string
	DeviceID    string
	Priority    string
	Assignee    string
}

type ticketService struct {
	repos  *repository.Repos
	scope  ScopeService
	clock  Clock
	logger *zap.Logger
}

// NewTicketService 创建 TicketService 实例
func NewTicketService(repos *repository.Repos, scope ScopeService, clock Clock, logger *zap.Logger) TicketService {
	return &ticketService{repos: repos, scope: scope, clock: clock, logger: logger}
}

func (s *ticketService) ListTickets(ctx context.Context, req ListTicketsRequest) (*ListTicketsResponse, error) {
	visible := s.scope.VisibleTickets(ctx, req.User)

	matched := make([]domain.Ticket, 0, len(visible))
	for _, t := range visible {
		if req.Status != "" && t.Status != req.Status {
			continue
		}
		if req.Priority != "" && t.Priority != req.Priority {
			continue
		}
		if req.DeviceID != "" && t.DeviceID != req.DeviceID {
			continue
		}
		matched = append(matched, t)
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	size := req.Size
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return &ListTicketsResponse{Items: matched[start:end], Total: len(matched)}, nil
}

func (s *ticketService) GetTicket(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error) {
	for _, t := range s.scope.VisibleTickets(ctx, user) {
		if t.TicketID == ticketID {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

// CreateTicket 创建工单，设备名/站点名在此冗余快照
func (s *ticketService) CreateTicket(ctx context.Context, req CreateTicketRequest) (*domain.Ticket, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	device, err := s.repos.Devices.Get(ctx, req.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", req.DeviceID, err)
	}
	siteName := device.SiteID
	if site, err := s.repos.Sites.Get(ctx, device.SiteID); err == nil {
		siteName = site.Name
	}

	now := s.clock.Now()
	ticket := domain.Ticket{
		Title:       req.Title,
		Description: req.Description,
		DeviceID:    device.DeviceID,
		DeviceName:  device.Name,
		SiteName:    siteName,
		Priority:    req.Priority,
		Status:      domain.TicketStatusOpen,
		Assignee:    req.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repos.Tickets.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", created.TicketID),
		zap.String("device_id", created.DeviceID),
		zap.String("priority", created.Priority))
	return created, nil
}

func (s *ticketService) UpdateStatus(ctx context.Context, ticketID, status string) (*domain.Ticket, error) {
	return s.repos.Tickets.SetStatus(ctx, ticketID, status, s.clock.Now())
}

func (s *ticketService) AddComment(ctx context.Context, ticketID, author, text string) (*domain.Ticket, error) {
	if text == "" {
		return nil, fmt.Errorf("comment text is required")
	}
	comment := domain.TicketComment{Author: author, Text: text}
	return s.repos.Tickets.AddComment(ctx, ticketID, comment, s.clock.Now())
}

func (s *ticketService) DeleteTicket(ctx context.Context, ticketID string) error {
	return s.repos.Tickets.Delete(ctx, ticketID)
}
