package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodtrack/prodtrack/internal/api"
	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/device"
	"github.com/prodtrack/prodtrack/internal/order"
	"github.com/prodtrack/prodtrack/internal/product"
)

type testEnv struct {
	router  http.Handler
	devices *device.Service
	store   *device.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	deviceStore := device.NewMemoryStore()
	devices := device.NewService(device.ServiceConfig{
		Store:    deviceStore,
		Logger:   logger,
		CacheTTL: time.Minute,
	})
	t.Cleanup(devices.Close)

	productStore := product.NewMemoryStore()
	require.NoError(t, product.SeedDefaults(context.Background(), productStore))
	products := product.NewService(productStore, logger)

	orders := order.NewService(order.NewMemoryStore(), deviceStore, logger)

	router := api.NewRouter(api.RouterConfig{
		Version:        "test",
		Host:           "127.0.0.1",
		Port:           3000,
		Logger:         logger,
		DeviceService:  devices,
		ProductService: products,
		OrderService:   orders,
	})

	return &testEnv{router: router, devices: devices, store: deviceStore}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func authorizeDevice(t *testing.T, e *testEnv, deviceID string) {
	t.Helper()
	ctx := context.Background()
	e.devices.Check(ctx, deviceID, true, device.Meta{})
	_, err := e.devices.Authorize(ctx, deviceID)
	require.NoError(t, err)
}

func TestRouter_HealthCheck(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ServerInfo(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/server_info.json", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)

	var info models.ServerInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "prodtrack", info.Name)
	assert.Equal(t, 3000, info.Port)
}

func TestRouter_CheckDevice_AutoRegisters(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-AB12-CD34-EF5678", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)

	var out models.AuthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.False(t, out.Authorized)
	assert.True(t, out.NewDevice)
	assert.True(t, out.DeviceExists)
}

func TestRouter_CheckDevice_MissingID(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device", http.NoBody))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_CheckDevice_ForceSeesAuthorization(t *testing.T) {
	e := newTestEnv(t)

	// First poll registers and caches the pending answer.
	e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-1111-2222-AAAAAA", http.NoBody))

	authorizeDevice(t, e, "TAB-1111-2222-AAAAAA")

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-1111-2222-AAAAAA&force=true", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var out models.AuthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Authorized)
	assert.Equal(t, "authorized", out.Status)
}

func TestRouter_RegisterDevice(t *testing.T) {
	e := newTestEnv(t)

	body, _ := json.Marshal(models.RegisterDeviceRequest{
		DeviceID:   "TAB-REGI-0000-ABCDEF",
		DeviceName: "Linha 2",
		Model:      "Samsung Tab A8",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register-device", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := e.do(req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var out models.AuthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.NewDevice)
	require.NotNil(t, out.Device)
	assert.Equal(t, "Linha 2", out.Device.Name)

	// Registering again is idempotent and reports current status.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register-device", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = e.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register-device",
		strings.NewReader("device_id=TAB-TEXT-0000-ABCDEF"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := e.do(req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_UpdateDevice_Lifecycle(t *testing.T) {
	e := newTestEnv(t)

	e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-LIFE-0000-ABCDEF", http.NoBody))

	body, _ := json.Marshal(models.UpdateDeviceRequest{Key: "TAB-LIFE-0000-ABCDEF", Status: "authorized"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/update-device", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Success bool               `json:"success"`
		Device  *models.AuthDevice `json:"device"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	require.NotNil(t, out.Device)
	assert.Equal(t, "authorized", out.Device.Status)

	// Unknown device yields a problem document.
	body, _ = json.Marshal(models.UpdateDeviceRequest{Key: "TAB-MISS-0000-ABCDEF", Status: "revoked"})
	req = httptest.NewRequest(http.MethodPost, "/api/auth/update-device", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = e.do(req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RejectDevice(t *testing.T) {
	e := newTestEnv(t)

	e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-REJC-0000-ABCDEF", http.NoBody))

	body, _ := json.Marshal(models.RejectDeviceRequest{Key: "TAB-REJC-0000-ABCDEF"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/reject-device", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := e.do(req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// The device can start the approval flow again from scratch.
	w = e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-REJC-0000-ABCDEF", http.NoBody))
	var out models.AuthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.NewDevice)
}

func TestRouter_Workspace_GatesByClassification(t *testing.T) {
	e := newTestEnv(t)

	// Unknown device: 200 with the blocking payload, never an error.
	req := httptest.NewRequest(http.MethodGet, "/maquina", http.NoBody)
	req.Header.Set("x-device-id", "TAB-TERM-0000-ABCDEF")
	w := e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var blocked models.AuthCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blocked))
	assert.False(t, blocked.Authorized)

	authorizeDevice(t, e, "TAB-TERM-0000-ABCDEF")

	req = httptest.NewRequest(http.MethodGet, "/maquina", http.NoBody)
	req.Header.Set("x-device-id", "TAB-TERM-0000-ABCDEF")
	w = e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var workspace struct {
		Success    bool                               `json:"success"`
		Authorized bool                               `json:"authorized"`
		Products   map[string][]models.CatalogProduct `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &workspace))
	assert.True(t, workspace.Authorized)
	assert.NotEmpty(t, workspace.Products["pt"])
}

func TestRouter_Workspace_MintsIdentifier(t *testing.T) {
	e := newTestEnv(t)

	// No cookie, query, or header: the middleware mints an ID and sets it
	// as a cookie so the next request is recognized.
	w := e.do(httptest.NewRequest(http.MethodGet, "/maquina", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	var deviceCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "device_id" {
			deviceCookie = c
		}
	}
	require.NotNil(t, deviceCookie)
	assert.Contains(t, deviceCookie.Value, "TAB-")
	assert.False(t, deviceCookie.HttpOnly)
}

func TestRouter_Products(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/products", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var catalog models.CatalogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	assert.True(t, catalog.Success)
	assert.Len(t, catalog.Categories, 5)
	assert.NotEmpty(t, catalog.Products["ph"])

	// Unknown category is a validation problem.
	w = e.do(httptest.NewRequest(http.MethodGet, "/api/products/xx", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Add and remove round trip.
	body, _ := json.Marshal(models.AddProductRequest{Name: "PT NOVO TESTE"})
	req := httptest.NewRequest(http.MethodPost, "/api/products/pt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = e.do(req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.CatalogProduct
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pt", created.Category)

	w = e.do(httptest.NewRequest(http.MethodDelete, "/api/products/pt/"+created.ProductID, http.NoBody))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_Orders_Lifecycle(t *testing.T) {
	e := newTestEnv(t)

	authorizeDevice(t, e, "TAB-ORDR-0000-ABCDEF")

	body, _ := json.Marshal(models.StartOrderRequest{
		OrderCode: "OP-5001",
		Items: []models.OrderItem{
			{ProductID: "pt_1", Name: "PT LEVE", Category: "pt", Quantity: 12, Unit: "un"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-device-id", "TAB-ORDR-0000-ABCDEF")

	w := e.do(req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "OP-5001", created.OrderCode)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "TAB-ORDR-0000-ABCDEF", created.DeviceID)

	// Complete it.
	req = httptest.NewRequest(http.MethodPost, "/api/orders/OP-5001/complete", http.NoBody)
	req.Header.Set("x-device-id", "TAB-ORDR-0000-ABCDEF")
	w = e.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var completed models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.Equal(t, "completed", completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	// Listing with a filter.
	w = e.do(httptest.NewRequest(http.MethodGet, "/api/orders?status=completed", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var list models.OrderListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	// Activity was refreshed on the device.
	d, err := e.store.Find(context.Background(), "TAB-ORDR-0000-ABCDEF")
	require.NoError(t, err)
	assert.NotNil(t, d.LastActivity)
}

func TestRouter_ResetDevices(t *testing.T) {
	e := newTestEnv(t)

	e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-RST1-0000-ABCDEF", http.NoBody))
	e.do(httptest.NewRequest(http.MethodGet, "/api/auth/device?id=TAB-RST2-0000-ABCDEF", http.NoBody))

	w := e.do(httptest.NewRequest(http.MethodPost, "/api/auth/reset-devices", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var out models.ResetDevicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, int64(2), out.Removed)
}

func TestRouter_ClearCache(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/auth/clear-cache", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)

	var out models.ClearCacheResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
}
