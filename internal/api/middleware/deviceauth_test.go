package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodtrack/prodtrack/internal/api/middleware"
	"github.com/prodtrack/prodtrack/internal/device"
)

func newClassifier(t *testing.T, store device.Store) func(http.Handler) http.Handler {
	t.Helper()
	svc := device.NewService(device.ServiceConfig{
		Store:    store,
		Logger:   zerolog.New(io.Discard),
		CacheTTL: time.Minute,
	})
	t.Cleanup(svc.Close)
	return middleware.DeviceAuth(svc, zerolog.New(io.Discard))
}

func classify(mw func(http.Handler) http.Handler, req *http.Request) (device.Classification, *httptest.ResponseRecorder) {
	var got device.Classification
	var ok bool
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = middleware.GetDeviceAuth(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if !ok {
		got = device.Classification{}
	}
	return got, w
}

func TestDeviceAuth_CookieWinsOverQueryAndHeader(t *testing.T) {
	mw := newClassifier(t, device.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/maquina?device_id=TAB-QURY-0000-ABCDEF", http.NoBody)
	req.AddCookie(&http.Cookie{Name: "device_id", Value: "TAB-COOK-0000-ABCDEF"})
	req.Header.Set("x-device-id", "TAB-HEAD-0000-ABCDEF")

	auth, _ := classify(mw, req)
	assert.Equal(t, "TAB-COOK-0000-ABCDEF", auth.DeviceID)
}

func TestDeviceAuth_QueryFallsBackToShortParam(t *testing.T) {
	mw := newClassifier(t, device.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/maquina?id=TAB-SHRT-0000-ABCDEF", http.NoBody)
	auth, _ := classify(mw, req)
	assert.Equal(t, "TAB-SHRT-0000-ABCDEF", auth.DeviceID)
}

func TestDeviceAuth_MintsAndSetsCookie(t *testing.T) {
	mw := newClassifier(t, device.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/maquina", http.NoBody)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")

	auth, w := classify(mw, req)
	assert.NotEmpty(t, auth.DeviceID)
	assert.True(t, auth.NewDevice)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, middleware.DeviceCookieName, c.Name)
	assert.Equal(t, auth.DeviceID, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.False(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), c.MaxAge)
}

func TestDeviceAuth_NeverBlocks(t *testing.T) {
	// Even with a dead store every request reaches the handler; the
	// classification carries the error state instead.
	mw := newClassifier(t, device.NewUnavailableStore())

	req := httptest.NewRequest(http.MethodGet, "/maquina", http.NoBody)
	req.Header.Set("x-device-id", "TAB-DEAD-0000-ABCDEF")

	auth, w := classify(mw, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, device.StateError, auth.State)
	assert.False(t, auth.Authorized)
	assert.False(t, auth.Bypass)
}

func TestDeviceAuth_AuthorizedBypass(t *testing.T) {
	store := device.NewMemoryStore()
	mw := newClassifier(t, store)

	seed := &device.Device{DeviceID: "TAB-OKOK-0000-ABCDEF", Name: "Linha 1", Status: device.StatusAuthorized}
	created, err := store.Create(context.Background(), seed)
	require.NoError(t, err)
	require.True(t, created)

	req := httptest.NewRequest(http.MethodGet, "/maquina", http.NoBody)
	req.AddCookie(&http.Cookie{Name: "device_id", Value: "TAB-OKOK-0000-ABCDEF"})

	auth, _ := classify(mw, req)
	assert.True(t, auth.Authorized)
	assert.True(t, auth.Bypass)
}
