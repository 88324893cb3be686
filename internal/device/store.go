package device

import (
	"context"
	"strconv"
)

// Store defines the interface for device persistence.
//
// Keys on mutation operations accept either the string device identifier or
// its numeric surrogate (older admin tooling sends row IDs). Find is always
// by exact device identifier.
type Store interface {
	// Find retrieves a device by its string identifier.
	Find(ctx context.Context, deviceID string) (*Device, error)

	// FindAny retrieves a device by string identifier or numeric surrogate key.
	FindAny(ctx context.Context, key string) (*Device, error)

	// List retrieves all devices, newest first.
	List(ctx context.Context) ([]*Device, error)

	// Create inserts a new device with insert-or-ignore semantics.
	// Returns false when a record with the same identifier already existed;
	// concurrent self-registration of the same device must be harmless.
	Create(ctx context.Context, d *Device) (created bool, err error)

	// SetStatus transitions a device to the given status.
	SetStatus(ctx context.Context, key string, status Status) error

	// Delete removes a device entirely (reject semantics).
	Delete(ctx context.Context, key string) error

	// DeleteAll removes every device and returns the count.
	DeleteAll(ctx context.Context) (int64, error)

	// TouchActivity refreshes last_activity without altering status.
	TouchActivity(ctx context.Context, deviceID string) error
}

// numericKey reports whether key is a numeric surrogate rather than a
// device identifier.
func numericKey(key string) (int64, bool) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
