package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fleetwatch/internal/domain"
	"fleetwatch/internal/repository"
	"fleetwatch/internal/service"
)

// DeviceHandler 设备管理 Handler
type DeviceHandler struct {
	devices  service.DeviceService
	identity *Identity
	logger   *zap.Logger
}

// NewDeviceHandler 创建设备管理 Handler
func NewDeviceHandler(devices service.DeviceService, identity *Identity, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, identity: identity, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DeviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/devices" && r.Method == http.MethodGet:
		h.ListDevices(w, r)
	case path == "/api/v1/devices" && r.Method == http.MethodPost:
		h.CreateDevice(w, r)
	case strings.HasPrefix(path, "/api/v1/devices/"):
		deviceID := strings.TrimPrefix(path, "/api/v1/devices/")
		if deviceID == "" || strings.Contains(deviceID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetDevice(w, r, deviceID)
		case http.MethodPut:
			h.UpdateDevice(w, r, deviceID)
		case http.MethodDelete:
			h.DeleteDevice(w, r, deviceID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	resp, err := h.devices.ListDevices(ctx, service.ListDevicesRequest{
		User:    h.identity.CurrentUser(ctx, r),
		SiteID:  q.Get("site_id"),
		Type:    q.Get("type"),
		Status:  q.Get("status"),
		Keyword: q.Get("keyword"),
		Page:    queryInt(r, "page", 1),
		Size:    queryInt(r, "size", 20),
	})
	if err != nil {
		h.logger.Error("ListDevices failed", zap.Error(err))
		writeFail(w, "failed to list devices")
		return
	}

	items := make([]map[string]any, 0, len(resp.Items))
	for i := range resp.Items {
		items = append(items, resp.Items[i].ToJSON())
	}
	writeOk(w, map[string]any{"items": items, "total": resp.Total})
}

func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request, deviceID string) {
	ctx := r.Context()
	device, err := h.devices.GetDevice(ctx, h.identity.CurrentUser(ctx, r), deviceID)
	if err != nil {
		writeFail(w, "device not found")
		return
	}
	writeOk(w, device.ToJSON())
}

func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil || (user.Role != domain.RoleAdmin && user.Role != domain.RoleManager) {
		writeFail(w, "admin or manager role required")
		return
	}

	var body struct {
		Name      string `json:"name"`
		SiteID    string `json:"site_id"`
		Type      string `json:"type"`
		IPAddress string `json:"ip_address"`
		Model     string `json:"model"`
		Firmware  string `json:"firmware"`
	}
	if err := decodeBody(r, &body); err != nil || body.Name == "" || body.SiteID == "" {
		writeFail(w, "name and site_id are required")
		return
	}

	created, err := h.devices.CreateDevice(ctx, domain.Device{
		Name: body.Name, SiteID: body.SiteID, Type: body.Type,
		IPAddress: body.IPAddress, Model: body.Model, Firmware: body.Firmware,
	})
	if err != nil {
		h.logger.Error("CreateDevice failed", zap.Error(err))
		writeFail(w, "failed to create device")
		return
	}
	writeOk(w, created.ToJSON())
}

func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request, deviceID string) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil || user.Role == domain.RoleViewer {
		writeFail(w, "write access required")
		return
	}

	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		writeFail(w, "invalid request body")
		return
	}
	updated, err := h.devices.UpdateDevice(ctx, deviceID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "device not found")
			return
		}
		h.logger.Error("UpdateDevice failed", zap.String("device_id", deviceID), zap.Error(err))
		writeFail(w, "failed to update device")
		return
	}
	writeOk(w, updated.ToJSON())
}

func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request, deviceID string) {
	ctx := r.Context()
	user := h.identity.CurrentUser(ctx, r)
	if user == nil || !user.IsAdmin() {
		writeFail(w, "admin role required")
		return
	}
	if err := h.devices.DeleteDevice(ctx, deviceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeFail(w, "device not found")
			return
		}
		writeFail(w, "failed to delete device")
		return
	}
	writeOk(w, map[string]any{"deleted": deviceID})
}
