package terminal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/device"
	"github.com/prodtrack/prodtrack/internal/identity"
)

// Poll cadence in ticks. The ticker fires every second; waiting states check
// every other tick, settled states every fifth.
const (
	waitingPollTicks = 2
	settledPollTicks = 5
)

// ControllerConfig holds dependencies for the authorization controller.
type ControllerConfig struct {
	API       API
	Identity  Identity
	StateDir  string
	Presenter Presenter
	Logger    zerolog.Logger
}

// Controller runs the client-side authorization state machine: establish an
// identity, register, poll until authorized, and keep watching for
// revocation afterwards.
type Controller struct {
	api       API
	identity  Identity
	stateDir  string
	presenter Presenter
	logger    zerolog.Logger

	state State
	tick  int
}

// NewController creates a controller. Call Run to drive it.
func NewController(cfg ControllerConfig) *Controller {
	return &Controller{
		api:       cfg.API,
		identity:  cfg.Identity,
		stateDir:  cfg.StateDir,
		presenter: cfg.Presenter,
		logger:    cfg.Logger.With().Str("component", "terminal_controller").Logger(),
		state:     StateChecking,
	}
}

// State returns the current authorization state.
func (c *Controller) State() State {
	return c.state
}

// Identity returns the possibly-updated identity, for persisting.
func (c *Controller) Identity() Identity {
	return c.identity
}

// Run drives the state machine until the context is canceled. It ticks once
// per second; the cadence rules decide which ticks actually poll.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.bootstrap(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// bootstrap establishes the identity and performs the initial registration.
func (c *Controller) bootstrap(ctx context.Context) error {
	if c.identity.EnsureDeviceID() {
		c.persistIdentity()
	}

	if c.identity.Name == "" {
		c.setState(StateRegistration, "")
		c.presenter.ShowRegistration(&c.identity)
		if c.identity.Name == "" {
			// Still blank: headless fallback.
			c.identity.Name = identity.OperatorTag(c.identity.DeviceID)
		}
		c.persistIdentity()
	}

	resp, err := c.api.RegisterDevice(ctx, c.identity.DeviceID, c.identity.Name, c.identity.Model)
	if err != nil {
		c.logger.Warn().Err(err).Msg("initial registration failed")
		c.setState(StateError, "")
		return nil
	}
	c.apply(resp)
	return nil
}

// Tick advances the state machine by one second. Exported so tests can step
// time without a real ticker.
func (c *Controller) Tick(ctx context.Context) {
	c.tick++

	interval := settledPollTicks
	waiting := c.state.Waiting() || c.state == StateChecking || c.state == StateError
	if waiting {
		interval = waitingPollTicks
	}
	if c.tick%interval != 0 {
		return
	}

	force := c.state.Waiting()
	if force {
		// Flush the server's cached answer first so the forced check
		// reflects any approval that just happened.
		if err := c.api.ClearCache(ctx); err != nil {
			c.logger.Debug().Err(err).Msg("cache clear failed")
		}
	}

	resp, err := c.api.CheckDevice(ctx, c.identity.DeviceID, force)
	if err != nil {
		c.logger.Warn().Err(err).Msg("authorization check failed")
		c.setState(StateError, "")
		return
	}
	c.apply(resp)
}

// apply folds a server answer into the state machine.
func (c *Controller) apply(resp models.AuthCheckResponse) {
	if c.identity.Adopt(resp.DeviceID) {
		c.persistIdentity()
	}

	var next State
	switch {
	case resp.Authorized:
		next = StateAuthorized
	case !resp.Success:
		next = StateError
	case resp.Status == string(device.StatusRevoked):
		next = StateAccessDenied
	case resp.NewDevice || resp.Status == string(device.StatusPending):
		next = StateAwaitingApproval
	case !resp.DeviceExists:
		next = StateAwaitingApproval
	default:
		next = StateAccessDenied
	}

	c.setState(next, resp.Message)
}

func (c *Controller) setState(next State, message string) {
	if next == c.state {
		return
	}
	prev := c.state
	c.state = next

	c.logger.Info().
		Str("from", string(prev)).
		Str("to", string(next)).
		Msg("authorization state changed")

	if next == StateAuthorized {
		c.presenter.ShowState(next, message)
		c.presenter.Dismiss()
		return
	}
	c.presenter.ShowState(next, message)
}

func (c *Controller) persistIdentity() {
	if c.stateDir == "" {
		return
	}
	if err := c.identity.Save(c.stateDir); err != nil {
		c.logger.Warn().Err(err).Msg("identity persist failed")
	}
}
