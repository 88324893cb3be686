package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prodtrack/prodtrack/internal/api/middleware"
)

func newLimitedHandler(cfg middleware.RateLimitConfig) http.Handler {
	return middleware.RateLimitByDevice(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitByDevice_DistinctDevicesBehindOneNAT(t *testing.T) {
	h := newLimitedHandler(middleware.RateLimitConfig{
		RequestLimit: 2,
		WindowLength: time.Minute,
	})

	// Many tablets polling through the same gateway address: each device
	// gets its own bucket, so none of them is throttled.
	for i := 0; i < 20; i++ {
		target := fmt.Sprintf("/api/auth/device?id=TAB-%04d-0000-ABCDEF", i)
		req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
		req.RemoteAddr = "192.168.1.50:51234"

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "device %d must have its own bucket", i)
	}
}

func TestRateLimitByDevice_SameDeviceIsThrottled(t *testing.T) {
	h := newLimitedHandler(middleware.RateLimitConfig{
		RequestLimit: 2,
		WindowLength: time.Minute,
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-AAAA-0000-ABCDEF", http.NoBody)
		req.RemoteAddr = "192.168.1.50:51234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "application/problem+json", last.Header().Get("Content-Type"))
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
}

func TestRateLimitByDevice_CookieIdentifierCounts(t *testing.T) {
	h := newLimitedHandler(middleware.RateLimitConfig{
		RequestLimit: 2,
		WindowLength: time.Minute,
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/clear-cache", http.NoBody)
		req.RemoteAddr = "192.168.1.50:51234"
		req.AddCookie(&http.Cookie{Name: middleware.DeviceCookieName, Value: "TAB-BBBB-0000-ABCDEF"})
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}

func TestRateLimitByDevice_NoIdentifierFallsBackToIP(t *testing.T) {
	h := newLimitedHandler(middleware.RateLimitConfig{
		RequestLimit: 2,
		WindowLength: time.Minute,
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/device", http.NoBody)
		req.RemoteAddr = "10.0.0.9:40000"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)

	// A different address still has budget.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/device", http.NoBody)
	req.RemoteAddr = "10.0.0.10:40000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
