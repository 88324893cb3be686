package models

import "github.com/prodtrack/prodtrack/internal/device"

// AuthDevice is the wire representation of a registered device. Field names
// are snake_case to match what the tablets already speak.
type AuthDevice struct {
	ID           int64      `json:"id"`
	DeviceID     string     `json:"device_id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Operator     string     `json:"operator,omitempty"`
	IP           string     `json:"ip,omitempty"`
	CreatedAt    Timestamp  `json:"created_at"`
	UpdatedAt    Timestamp  `json:"updated_at"`
	LastActivity *Timestamp `json:"last_activity,omitempty"`
}

// NewAuthDevice converts a domain device to its wire form.
func NewAuthDevice(d *device.Device) *AuthDevice {
	if d == nil {
		return nil
	}
	return &AuthDevice{
		ID:           d.ID,
		DeviceID:     d.DeviceID,
		Name:         d.Name,
		Type:         d.Type,
		Status:       string(d.Status),
		Operator:     d.Operator,
		IP:           d.IP,
		CreatedAt:    Timestamp(d.CreatedAt),
		UpdatedAt:    Timestamp(d.UpdatedAt),
		LastActivity: OptionalTimestamp(d.LastActivity),
	}
}

// AuthCheckResponse is the response for device authorization checks.
type AuthCheckResponse struct {
	Success      bool        `json:"success"`
	Authorized   bool        `json:"authorized"`
	Status       string      `json:"status,omitempty"`
	DeviceExists bool        `json:"device_exists"`
	NewDevice    bool        `json:"new_device,omitempty"`
	Message      string      `json:"message,omitempty"`
	DeviceID     string      `json:"device_id,omitempty"`
	Device       *AuthDevice `json:"device,omitempty"`
}

// NewAuthCheckResponse builds the wire response from a classification.
func NewAuthCheckResponse(c device.Classification) AuthCheckResponse {
	return AuthCheckResponse{
		Success:      c.State != device.StateError,
		Authorized:   c.Authorized,
		Status:       classificationStatus(c),
		DeviceExists: c.DeviceExists,
		NewDevice:    c.NewDevice,
		Message:      c.Message,
		DeviceID:     c.DeviceID,
		Device:       NewAuthDevice(c.Device),
	}
}

func classificationStatus(c device.Classification) string {
	if c.Device != nil {
		return string(c.Device.Status)
	}
	return ""
}

// RegisterDeviceRequest is the request body for device registration.
type RegisterDeviceRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name,omitempty"`
	Model      string `json:"model,omitempty"`
}

// UpdateDeviceRequest is the request body for authorizing or revoking a
// device. Key accepts the numeric row ID or the device identifier. Older
// consoles send the authorized flag instead of a status string.
type UpdateDeviceRequest struct {
	Key        string `json:"device_id"`
	Status     string `json:"status"`
	Authorized *bool  `json:"authorized,omitempty"`
}

// RejectDeviceRequest is the request body for rejecting a device.
type RejectDeviceRequest struct {
	Key string `json:"device_id"`
}

// DeviceListResponse is the response for the device list endpoint.
type DeviceListResponse struct {
	Success bool          `json:"success"`
	Devices []*AuthDevice `json:"devices"`
	Count   int           `json:"count"`
}

// ResetDevicesResponse reports how many rows a reset removed.
type ResetDevicesResponse struct {
	Success bool   `json:"success"`
	Removed int64  `json:"removed"`
	Message string `json:"message"`
}

// ClearCacheResponse acknowledges a cache flush.
type ClearCacheResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
