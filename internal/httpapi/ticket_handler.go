package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fleetwatch/internal/repository"
	"fleetwatch/internal/service"
)

// TicketHandler 工单 Handler
type TicketHandler struct {
	tickets  service.TicketService
	identity *Identity
	logger   *zap.Logger
}

// NewTicketHandler 创建工单 Handler
func NewTicketHandler(tickets service.TicketService, identity *Identity, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *TicketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/tickets" && r.Method == http.MethodGet:
		h.ListTickets(w, r)
	case path == "/api/v1/tickets" && r.Method == http.MethodPost:
		h.CreateTicket(w, r)
	case strings.HasSuffix(path, "/status") && r.Method == http.MethodPut:
		ticketID := strings.TrimPrefix(strings.TrimSuffix(path, "/status"), "/api/v1/tickets/")
		if ticketID != "" && !strings.Contains(ticketID, "/") {
			h.UpdateStatus(w, r, ticketID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasSuffix(path, "/comments") && r.Method == http.MethodPost:
		ticketID := strings.TrimPrefix(strings.TrimSuffix(path, "/comments"), "/api/v1/tickets/")
		if ticketID != "" && !strings.Contains(ticketID, "/") {
			h.AddComment(w, r, ticketID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasPrefix(path, "/api/v1/tickets/"):
		ticketID := strings.TrimPrefix(path, "/api/v1/tickets/")
		if ticketID == "" || strings.Contains(ticketID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetTicket(w, r, ticketID)
		case http.MethodDelete:
			h.DeleteTicket(w, r, ticketID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	resp, err := h.tickets.ListTickets(ctx, service.ListTicketsRequest{
		User:     h.identity.CurrentUser(ctx, r),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		DeviceID: q.Get("device_id"),
		Page:     queryInt(r, "page", 1),
		Size:     queryInt(r, "size", 20),
	})
	if err != nil {
		h.logger.Error("ListTickets failed", zap.Error(err))
		writeFail(w, "failed to list tickets")
		return
	}

	items := make([]map[string]any, 0, len(resp.Items))
	for i := range resp.Items {
		items = append(items, resp.Items[i].ToJSON())
	}
	writeOk(w, map[string]any{"items": items, "total": resp.Total})
}

func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request, ticketID string) {
	ctx := r.Context()
	ticket, err := h.tickets.GetTicket(ctx, h.identity.CurrentUser(ctx, r), ticketID)
	if err != nil {
		writeFail(w, "ticket not found")
		return
	}
	writeOk(w, ticket.ToJSON())
}

func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil {
		writeFail(w, "unknown user")
		return
	}

	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DeviceID    string `json:"device_id"`
		Priority    string `json:"priority"`
		Assignee    string `json:"assignee"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeFail(w, "invalid request body")
		return
	}

	created, err := h.tickets.CreateTicket(ctx, service.CreateTicketRequest{
		Title:       body.Title,
		Description: body.Description,
		DeviceID:    body.DeviceID,
		Priority:    body.Priority,
		Assignee:    body.Assignee,
	})
	if err != nil {
		writeFail(w, err.Error())
		return
	}
	writeOk(w, created.ToJSON())
}

func (h *TicketHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ticketID string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil || body.Status == "" {
		writeFail(w, "status is required")
		return
	}
	updated, err := h.tickets.UpdateStatus(r.Context(), ticketID, body.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "ticket not found")
			return
		}
		writeFail(w, "failed to update ticket status")
		return
	}
	writeOk(w, updated.ToJSON())
}

func (h *TicketHandler) AddComment(w http.ResponseWriter, r *http.Request, ticketID string) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil {
		writeFail(w, "unknown user")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &body); err != nil || body.Text == "" {
		writeFail(w, "text is required")
		return
	}
	updated, err := h.tickets.AddComment(ctx, ticketID, user.Name, body.Text)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "ticket not found")
			return
		}
		writeFail(w, "failed to add comment")
		return
	}
	writeOk(w, updated.ToJSON())
}

func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request, ticketID string) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil || !user.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}
	if err := h.tickets.DeleteTicket(ctx, ticketID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "ticket not found")
			return
		}
		writeFail(w, "failed to delete ticket")
		return
	}
	writeOk(w, map[string]any{"deleted": ticketID})
}
