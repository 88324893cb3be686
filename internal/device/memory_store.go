package device

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store. It backs tests and
// the degraded mode used when the SQLite file cannot be opened.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[string]*Device // keyed by device ID
	nextID  int64
}

// NewMemoryStore creates a new in-memory device store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices: make(map[string]*Device),
		nextID:  1,
	}
}

// Find retrieves a device by its string identifier.
func (s *MemoryStore) Find(_ context.Context, deviceID string) (*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(d), nil
}

// FindAny retrieves a device by string identifier or numeric surrogate key.
func (s *MemoryStore) FindAny(_ context.Context, key string) (*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.lookup(key)
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(d), nil
}

// lookup must be called with the lock held.
func (s *MemoryStore) lookup(key string) (*Device, bool) {
	if id, ok := numericKey(key); ok {
		for _, d := range s.devices {
			if d.ID == id {
				return d, true
			}
		}
		// A numeric key may still be a device_id in exotic setups.
	}
	d, ok := s.devices[key]
	return d, ok
}

// List retrieves all devices, newest first.
func (s *MemoryStore) List(_ context.Context) ([]*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		devices = append(devices, copyDevice(d))
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].CreatedAt.Equal(devices[j].CreatedAt) {
			return devices[i].ID > devices[j].ID
		}
		return devices[i].CreatedAt.After(devices[j].CreatedAt)
	})
	return devices, nil
}

// Create inserts a new device with insert-or-ignore semantics.
func (s *MemoryStore) Create(_ context.Context, d *Device) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.devices[d.DeviceID]; exists {
		return false, nil
	}

	if d.Status == "" {
		d.Status = StatusPending
	}
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	d.ID = s.nextID
	s.nextID++

	s.devices[d.DeviceID] = copyDevice(d)
	return true, nil
}

// SetStatus transitions a device to the given status.
func (s *MemoryStore) SetStatus(_ context.Context, key string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.lookup(key)
	if !ok {
		return ErrDeviceNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

// Delete removes a device entirely.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.lookup(key)
	if !ok {
		return ErrDeviceNotFound
	}
	delete(s.devices, d.DeviceID)
	return nil
}

// DeleteAll removes every device and returns the count.
func (s *MemoryStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := int64(len(s.devices))
	s.devices = make(map[string]*Device)
	return count, nil
}

// TouchActivity refreshes last_activity without altering status.
func (s *MemoryStore) TouchActivity(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[deviceID]
	if !ok {
		return nil
	}
	now := time.Now()
	d.LastActivity = &now
	return nil
}

// copyDevice creates a deep copy of a device.
func copyDevice(d *Device) *Device {
	if d == nil {
		return nil
	}
	deviceCopy := *d
	if d.LastActivity != nil {
		t := *d.LastActivity
		deviceCopy.LastActivity = &t
	}
	return &deviceCopy
}

var _ Store = (*MemoryStore)(nil)
