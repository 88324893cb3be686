package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/resilience"
)

// API is the server surface the controller needs. Satisfied by Client.
type API interface {
	CheckDevice(ctx context.Context, deviceID string, force bool) (models.AuthCheckResponse, error)
	RegisterDevice(ctx context.Context, deviceID, name, model string) (models.AuthCheckResponse, error)
	ClearCache(ctx context.Context) error
}

// Client is the typed HTTP client for the authorization API.
type Client struct {
	baseURL string
	http    *resilience.Client
	logger  zerolog.Logger
}

// NewClient creates a client against baseURL, e.g. "http://192.168.0.10:3000".
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resilience.NewClient(resilience.DefaultClientConfig("prodtrack-api")),
		logger:  logger.With().Str("component", "terminal_client").Logger(),
	}
}

// CheckDevice polls the authorization status for deviceID.
func (c *Client) CheckDevice(ctx context.Context, deviceID string, force bool) (models.AuthCheckResponse, error) {
	q := url.Values{}
	q.Set("id", deviceID)
	if force {
		q.Set("force", "true")
	}

	var out models.AuthCheckResponse
	err := c.getJSON(ctx, "/api/auth/device?"+q.Encode(), &out)
	return out, err
}

// RegisterDevice explicitly registers the device with its operator-chosen
// name and model.
func (c *Client) RegisterDevice(ctx context.Context, deviceID, name, model string) (models.AuthCheckResponse, error) {
	body, err := json.Marshal(models.RegisterDeviceRequest{
		DeviceID:   deviceID,
		DeviceName: name,
		Model:      model,
	})
	if err != nil {
		return models.AuthCheckResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/register-device", bytes.NewReader(body))
	if err != nil {
		return models.AuthCheckResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.AuthCheckResponse
	if err := c.doJSON(req, &out); err != nil {
		return models.AuthCheckResponse{}, err
	}
	return out, nil
}

// ClearCache flushes the server-side authorization cache so the following
// forced check reads the store.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.getJSON(ctx, "/api/auth/clear-cache", nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ API = (*Client)(nil)
