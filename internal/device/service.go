package device

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/identity"
)

// DefaultCacheTTL bounds how long a check result may be served without
// re-reading the store. Clients force-refresh on every poll while waiting,
// so the TTL only matters for the authorized fast path.
const DefaultCacheTTL = 5 * time.Minute

// CheckMetrics receives authorization check observations. Implemented by the
// API middleware metrics; nil disables recording.
type CheckMetrics interface {
	RecordCheck(state string, duration time.Duration)
	RecordCacheHit()
	RecordCacheMiss()
}

// ServiceConfig holds configuration for the device authorization service.
type ServiceConfig struct {
	Store    Store
	Logger   zerolog.Logger
	CacheTTL time.Duration
	Metrics  CheckMetrics
}

// Service classifies devices against the Store and owns the authorization
// cache. Every administrative mutation invalidates the cache; a forced check
// bypasses it entirely.
type Service struct {
	store   Store
	logger  zerolog.Logger
	cache   *ttlcache.Cache[string, *Device]
	metrics CheckMetrics
}

// NewService creates a new device authorization service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, *Device](ttl),
		ttlcache.WithDisableTouchOnHit[string, *Device](),
	)
	go cache.Start()

	return &Service{
		store:   cfg.Store,
		logger:  cfg.Logger,
		cache:   cache,
		metrics: cfg.Metrics,
	}
}

// Close stops the cache eviction loop.
func (s *Service) Close() {
	s.cache.Stop()
}

// Check classifies a device identifier. Unknown identifiers are
// auto-registered as pending. Store failures degrade to an unauthorized
// classification; this path never returns an error because the polling
// client must not treat "not yet approved" or a flaky store as fatal.
func (s *Service) Check(ctx context.Context, deviceID string, force bool, meta Meta) Classification {
	start := time.Now()
	c := s.check(ctx, deviceID, force, meta)
	if s.metrics != nil {
		s.metrics.RecordCheck(string(c.State), time.Since(start))
	}
	return c
}

func (s *Service) check(ctx context.Context, deviceID string, force bool, meta Meta) Classification {
	if deviceID == "" {
		return Classification{State: StateNoDeviceID, Message: msgMissingID}
	}

	if force {
		s.cache.Delete(deviceID)
	} else if item := s.cache.Get(deviceID); item != nil {
		if s.metrics != nil {
			s.metrics.RecordCacheHit()
		}
		return s.classifyDevice(item.Value())
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}

	d, err := s.store.Find(ctx, deviceID)
	switch {
	case err == nil:
		s.cache.Set(deviceID, d, ttlcache.DefaultTTL)
		return s.classifyDevice(d)

	case errors.Is(err, ErrDeviceNotFound):
		return s.autoRegister(ctx, deviceID, meta)

	default:
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("device check failed")
		return Classification{
			State:    StateError,
			DeviceID: deviceID,
			Message:  msgCheckFailed,
		}
	}
}

// Classify is the middleware entry point: classification plus the bypass
// decision and the last-activity refresh for authorized devices.
func (s *Service) Classify(ctx context.Context, deviceID string, force bool, meta Meta) Classification {
	c := s.Check(ctx, deviceID, force, meta)
	if c.Authorized {
		c.Bypass = true
		if err := s.store.TouchActivity(ctx, deviceID); err != nil {
			s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("activity refresh failed")
		}
	}
	return c
}

func (s *Service) classifyDevice(d *Device) Classification {
	c := Classification{
		DeviceID:     d.DeviceID,
		DeviceExists: true,
		Device:       d,
	}
	switch {
	case d.Authorized():
		c.State = StateAuthorized
		c.Authorized = true
		c.Message = msgAuthorized
	case d.Status == StatusPending:
		c.State = StateAwaitingApproval
		c.Message = msgAwaiting
	default:
		c.State = StateAccessDenied
		c.Message = msgDenied
	}
	return c
}

// autoRegister creates a pending record the first time an unknown
// identifier is seen. Create uses insert-or-ignore, so the losing side of a
// concurrent first contact just re-reads the winner's row.
func (s *Service) autoRegister(ctx context.Context, deviceID string, meta Meta) Classification {
	d := &Device{
		DeviceID:  deviceID,
		Name:      identity.OperatorTag(deviceID),
		Type:      identity.DetectModel(meta.UserAgent),
		Status:    StatusPending,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	created, err := s.store.Create(ctx, d)
	if err != nil {
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("auto-registration failed")
		return Classification{
			State:     StateError,
			DeviceID:  deviceID,
			NewDevice: true,
			Message:   msgCheckFailed,
		}
	}
	if !created {
		// Lost the race, or the store is absent. Re-read; if there is still
		// nothing the store is not persisting and nothing will ever be
		// authorized.
		if existing, ferr := s.store.Find(ctx, deviceID); ferr == nil {
			s.cache.Set(deviceID, existing, ttlcache.DefaultTTL)
			return s.classifyDevice(existing)
		}
		return Classification{
			State:     StateError,
			DeviceID:  deviceID,
			NewDevice: true,
			Message:   msgCheckFailed,
		}
	}

	s.logger.Info().
		Str("device_id", deviceID).
		Str("model", d.Type).
		Msg("device auto-registered")

	return Classification{
		State:        StateAwaitingApproval,
		DeviceID:     deviceID,
		NewDevice:    true,
		DeviceExists: true,
		Message:      msgRegistered,
		Device:       d,
	}
}

// Register records an explicitly registered device with its operator-chosen
// name and model. Registering an already-known identifier returns the
// existing status instead of erroring.
func (s *Service) Register(ctx context.Context, deviceID, name, model string, meta Meta) (Classification, error) {
	existing, err := s.store.Find(ctx, deviceID)
	if err == nil {
		return s.classifyDevice(existing), nil
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		return Classification{}, err
	}

	d := &Device{
		DeviceID:  deviceID,
		Name:      name,
		Type:      model,
		Status:    StatusPending,
		Operator:  name,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	created, err := s.store.Create(ctx, d)
	if err != nil {
		return Classification{}, err
	}
	if !created {
		if existing, ferr := s.store.Find(ctx, deviceID); ferr == nil {
			return s.classifyDevice(existing), nil
		}
	}

	s.cache.Delete(deviceID)
	s.logger.Info().
		Str("device_id", deviceID).
		Str("name", name).
		Str("model", model).
		Msg("device registered")

	return Classification{
		State:        StateAwaitingApproval,
		DeviceID:     deviceID,
		NewDevice:    true,
		DeviceExists: true,
		Message:      msgRegistered,
		Device:       d,
	}, nil
}

// List returns every device record.
func (s *Service) List(ctx context.Context) ([]*Device, error) {
	return s.store.List(ctx)
}

// Authorize flips a device to authorized and invalidates the cache.
func (s *Service) Authorize(ctx context.Context, key string) (*Device, error) {
	return s.setStatus(ctx, key, StatusAuthorized)
}

// Revoke flips a device to revoked, preserving the record.
func (s *Service) Revoke(ctx context.Context, key string) (*Device, error) {
	return s.setStatus(ctx, key, StatusRevoked)
}

func (s *Service) setStatus(ctx context.Context, key string, status Status) (*Device, error) {
	if err := s.store.SetStatus(ctx, key, status); err != nil {
		return nil, err
	}
	s.InvalidateCache()
	s.logger.Info().Str("device", key).Str("status", string(status)).Msg("device status updated")
	return s.store.FindAny(ctx, key)
}

// Reject removes the record entirely. A rejected device may re-register and
// restart the approval flow.
func (s *Service) Reject(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.InvalidateCache()
	s.logger.Warn().Str("device", key).Msg("device rejected and removed")
	return nil
}

// Reset removes every device record and returns the count.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.InvalidateCache()
	s.logger.Warn().Int64("count", count).Msg("all devices removed")
	return count, nil
}

// InvalidateCache clears every cached check, forcing the next check to read
// the store.
func (s *Service) InvalidateCache() {
	s.cache.DeleteAll()
}
