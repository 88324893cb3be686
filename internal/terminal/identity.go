// Package terminal implements the shop-floor client side of device
// authorization: a persistent identity, a polling state machine, and a typed
// API client.
package terminal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/prodtrack/prodtrack/internal/identity"
)

// Identity is what a terminal knows about itself. It is persisted so the
// device keeps the same identifier across restarts; losing it would restart
// the whole approval flow.
type Identity struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name,omitempty"`
	Model    string `json:"model,omitempty"`
}

// IdentityFile is the filename inside the state directory.
const IdentityFile = "identity.json"

// LoadIdentity reads the persisted identity from dir. A missing file yields
// a zero identity, not an error.
func LoadIdentity(dir string) (Identity, error) {
	data, err := os.ReadFile(filepath.Join(dir, IdentityFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, nil
		}
		return Identity{}, fmt.Errorf("read identity: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parse identity: %w", err)
	}
	return id, nil
}

// Save persists the identity to dir.
func (i Identity) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, IdentityFile), data, 0o644); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// EnsureDeviceID fills in a generated identifier when none is persisted yet.
// Reports whether the identity changed.
func (i *Identity) EnsureDeviceID() bool {
	if i.DeviceID != "" {
		return false
	}
	i.DeviceID = identity.Generate(hostSignals())
	return true
}

// Adopt takes over a server-issued identifier. The server mints one when a
// request arrives with no ID at all; adopting it keeps both sides talking
// about the same device.
func (i *Identity) Adopt(deviceID string) bool {
	if deviceID == "" || deviceID == i.DeviceID {
		return false
	}
	i.DeviceID = deviceID
	return true
}

// hostSignals builds generation signals from what a headless host knows
// about itself.
func hostSignals() identity.Signals {
	host, _ := os.Hostname()
	return identity.Signals{
		UserAgent: "prodtrack-terminal/" + runtime.Version(),
		Language:  os.Getenv("LANG"),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH + "/" + host,
	}
}
