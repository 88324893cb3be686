package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/device"
	"github.com/prodtrack/prodtrack/internal/identity"
)

// DeviceCookieName is the cookie that carries the device identifier. It is
// deliberately readable from scripts so the terminal UI can show it.
const DeviceCookieName = "device_id"

// DeviceCookieMaxAge keeps the identifier stable across reboots.
const DeviceCookieMaxAge = 30 * 24 * time.Hour

// deviceAuthKey is the context key for the device classification.
type deviceAuthKey struct{}

// DeviceAuth classifies every request against the device registry and
// attaches the result to the context. It never blocks a request and never
// writes a response body; enforcement is the handler's decision.
//
// The device identifier is taken from the device_id cookie, then the
// device_id/id query parameters, then the x-device-id header. A request
// carrying none of them gets an identifier minted from its headers and set
// as a cookie, so the next request is recognized.
func DeviceAuth(svc *device.Service, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := ExtractDeviceID(r)
			if deviceID == "" {
				deviceID = identity.Generate(identity.FromRequest(r))
				setDeviceCookie(w, deviceID)
				log.Debug().
					Str("request_id", GetRequestID(r.Context())).
					Str("device_id", deviceID).
					Msg("minted device identifier")
			}

			auth := svc.Classify(r.Context(), deviceID, false, device.Meta{
				IP:        clientIP(r),
				UserAgent: r.UserAgent(),
			})

			ctx := context.WithValue(r.Context(), deviceAuthKey{}, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractDeviceID resolves the device identifier from the request, in cookie,
// query parameter, header priority order.
func ExtractDeviceID(r *http.Request) string {
	if c, err := r.Cookie(DeviceCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if id := r.URL.Query().Get("device_id"); id != "" {
		return id
	}
	if id := r.URL.Query().Get("id"); id != "" {
		return id
	}
	return r.Header.Get("x-device-id")
}

// GetDeviceAuth retrieves the device classification from the context.
func GetDeviceAuth(ctx context.Context) (device.Classification, bool) {
	auth, ok := ctx.Value(deviceAuthKey{}).(device.Classification)
	return auth, ok
}

func setDeviceCookie(w http.ResponseWriter, deviceID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookieName,
		Value:    deviceID,
		Path:     "/",
		MaxAge:   int(DeviceCookieMaxAge.Seconds()),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP prefers the address RealIP normalized into RemoteAddr.
func clientIP(r *http.Request) string {
	return r.RemoteAddr
}
