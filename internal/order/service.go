package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DeviceActivity records that a device is actively working. Satisfied by the
// device store; nil disables activity tracking.
type DeviceActivity interface {
	TouchActivity(ctx context.Context, deviceID string) error
}

// Service implements order business logic on top of a Store.
type Service struct {
	store    Store
	activity DeviceActivity
	logger   zerolog.Logger
}

// NewService creates an order service.
func NewService(store Store, activity DeviceActivity, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		activity: activity,
		logger:   logger.With().Str("component", "order_service").Logger(),
	}
}

// Start creates a new pending order. An empty order code gets one minted
// from the current time.
func (s *Service) Start(ctx context.Context, orderCode, deviceID, operator, notes string, items []Item) (*Order, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		orderCode = fmt.Sprintf("OP-%d", time.Now().UnixMilli())
	}

	o := &Order{
		OrderCode: orderCode,
		Items:     items,
		Status:    StatusPending,
		DeviceID:  deviceID,
		Operator:  operator,
		Notes:     notes,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}

	s.touch(ctx, deviceID)
	s.logger.Info().
		Str("order_code", o.OrderCode).
		Str("device_id", deviceID).
		Int("items", len(items)).
		Msg("order started")
	return o, nil
}

// Get retrieves an order by its order code.
func (s *Service) Get(ctx context.Context, orderCode string) (*Order, error) {
	return s.store.Find(ctx, orderCode)
}

// List retrieves orders newest-first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*Order, error) {
	return s.store.List(ctx, status)
}

// Complete marks a pending order as completed.
func (s *Service) Complete(ctx context.Context, orderCode, deviceID string) (*Order, error) {
	o, err := s.store.Complete(ctx, orderCode)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, deviceID)
	s.logger.Info().
		Str("order_code", orderCode).
		Str("device_id", deviceID).
		Msg("order completed")
	return o, nil
}

// Remove deletes an order by its order code.
func (s *Service) Remove(ctx context.Context, orderCode string) error {
	if err := s.store.Delete(ctx, orderCode); err != nil {
		return err
	}

	s.logger.Info().Str("order_code", orderCode).Msg("order removed")
	return nil
}

func (s *Service) touch(ctx context.Context, deviceID string) {
	if s.activity == nil || deviceID == "" {
		return
	}
	if err := s.activity.TouchActivity(ctx, deviceID); err != nil {
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to record device activity")
	}
}
