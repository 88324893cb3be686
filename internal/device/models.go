// Package device provides device registration, authorization state and
// persistence for factory-floor terminals.
package device

import (
	"errors"
	"time"
)

// Store errors.
var (
	ErrDeviceNotFound   = errors.New("device not found")
	ErrStoreUnavailable = errors.New("device store unavailable")
)

// Status is the authoritative authorization state of a device.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusRevoked    Status = "revoked"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusRevoked:
		return true
	}
	return false
}

// Device is one registered physical client device. DeviceID is the
// client-chosen stable identifier; ID is a numeric surrogate kept for
// backward compatibility with older admin tooling.
type Device struct {
	ID           int64
	DeviceID     string
	Name         string
	Type         string
	Status       Status
	Operator     string
	IP           string
	UserAgent    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastActivity *time.Time
}

// Authorized reports whether the device may bypass the approval gate.
func (d *Device) Authorized() bool {
	return d.Status == StatusAuthorized
}

// Meta is provenance captured at registration or last contact.
type Meta struct {
	IP        string
	UserAgent string
}
