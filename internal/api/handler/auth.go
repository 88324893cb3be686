package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/api/middleware"
	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/api/response"
	"github.com/prodtrack/prodtrack/internal/device"
)

// AuthHandler handles device authorization endpoints.
type AuthHandler struct {
	devices *device.Service
	logger  zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(devices *device.Service, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		devices: devices,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// CheckDevice handles GET /api/auth/device - the authorization poll.
// The device ID comes from the id/device_id query parameters, falling back
// to the cookie and header the middleware already understands. force=true
// drops the cached decision before checking.
func (h *AuthHandler) CheckDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("id")
	if deviceID == "" {
		deviceID = middleware.ExtractDeviceID(r)
	}
	force := r.URL.Query().Get("force") == "true"

	auth := h.devices.Check(r.Context(), deviceID, force, metaFromRequest(r))
	if auth.State == device.StateNoDeviceID {
		response.BadRequest(w, r, auth.Message, nil)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAuthCheckResponse(auth))
}

// RegisterDevice handles POST /api/auth/register-device - explicit
// registration. Registering an already-known device is idempotent and
// reports its current status.
func (h *AuthHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	input.DeviceID = strings.TrimSpace(input.DeviceID)
	if input.DeviceID == "" {
		input.DeviceID = middleware.ExtractDeviceID(r)
	}
	if input.DeviceID == "" {
		response.BadRequest(w, r, "device_id is required", []models.FieldError{
			{Field: "device_id", Message: "must not be empty", Code: "required"},
		})
		return
	}

	auth, err := h.devices.Register(r.Context(), input.DeviceID, input.DeviceName, input.Model, metaFromRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err, "register device")
		return
	}

	status := http.StatusOK
	if auth.NewDevice {
		status = http.StatusCreated
	}
	response.JSON(w, r, status, models.NewAuthCheckResponse(auth))
}

// ListDevices handles GET /api/auth/devices - the admin console list.
func (h *AuthHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "list devices")
		return
	}

	out := make([]*models.AuthDevice, 0, len(devices))
	for _, d := range devices {
		out = append(out, models.NewAuthDevice(d))
	}
	response.JSON(w, r, http.StatusOK, models.DeviceListResponse{
		Success: true,
		Devices: out,
		Count:   len(out),
	})
}

// UpdateDevice handles POST /api/auth/update-device - authorize or revoke.
// The key accepts either the numeric row ID or the device identifier.
func (h *AuthHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Key == "" {
		response.BadRequest(w, r, "device_id is required", []models.FieldError{
			{Field: "device_id", Message: "must not be empty", Code: "required"},
		})
		return
	}

	status := device.Status(input.Status)
	if input.Status == "" && input.Authorized != nil {
		if *input.Authorized {
			status = device.StatusAuthorized
		} else {
			status = device.StatusRevoked
		}
	}

	var (
		d   *device.Device
		err error
	)
	switch status {
	case device.StatusAuthorized:
		d, err = h.devices.Authorize(r.Context(), input.Key)
	case device.StatusRevoked:
		d, err = h.devices.Revoke(r.Context(), input.Key)
	default:
		response.BadRequest(w, r, "status must be authorized or revoked", []models.FieldError{
			{Field: "status", Message: "must be one of: authorized, revoked", Code: "oneof"},
		})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err, "update device")
		return
	}

	response.JSON(w, r, http.StatusOK, struct {
		Success bool               `json:"success"`
		Device  *models.AuthDevice `json:"device"`
	}{Success: true, Device: models.NewAuthDevice(d)})
}

// RejectDevice handles POST /api/auth/reject-device - removes the row so the
// device can register again from scratch.
func (h *AuthHandler) RejectDevice(w http.ResponseWriter, r *http.Request) {
	var input models.RejectDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Key == "" {
		response.BadRequest(w, r, "device_id is required", nil)
		return
	}

	if err := h.devices.Reject(r.Context(), input.Key); err != nil {
		h.writeServiceError(w, r, err, "reject device")
		return
	}
	response.NoContent(w, r)
}

// ResetDevices handles POST /api/auth/reset-devices - wipes the registry.
func (h *AuthHandler) ResetDevices(w http.ResponseWriter, r *http.Request) {
	removed, err := h.devices.Reset(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "reset devices")
		return
	}

	response.JSON(w, r, http.StatusOK, models.ResetDevicesResponse{
		Success: true,
		Removed: removed,
		Message: "registro de dispositivos reiniciado",
	})
}

// ClearCache handles GET /api/auth/clear-cache - flushes cached
// authorization decisions so the next poll hits the store.
func (h *AuthHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.devices.InvalidateCache()
	response.JSON(w, r, http.StatusOK, models.ClearCacheResponse{
		Success: true,
		Message: "cache de autorização limpo",
	})
}

func (h *AuthHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		response.NotFound(w, r, "device not found")
	case errors.Is(err, device.ErrStoreUnavailable):
		response.ServiceUnavailable(w, r, "device store unavailable")
	default:
		h.logger.Error().Err(err).Str("op", op).Msg("device operation failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

func metaFromRequest(r *http.Request) device.Meta {
	return device.Meta{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
