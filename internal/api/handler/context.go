package handler

import (
	"context"

	"github.com/prodtrack/prodtrack/internal/api/middleware"
	"github.com/prodtrack/prodtrack/internal/device"
)

// GetDeviceAuth retrieves the device classification from the context.
// This is a convenience wrapper around middleware.GetDeviceAuth.
func GetDeviceAuth(ctx context.Context) (device.Classification, bool) {
	return middleware.GetDeviceAuth(ctx)
}
