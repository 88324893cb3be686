package terminal

import "github.com/rs/zerolog"

// Presenter renders authorization state to the operator. The shipped
// implementation logs; a kiosk frontend implements the same interface.
type Presenter interface {
	// ShowState displays the current blocking state and its message.
	ShowState(state State, message string)

	// ShowRegistration asks the operator to complete the identity before
	// registration. Implementations fill Name and Model.
	ShowRegistration(id *Identity)

	// Dismiss removes any blocking overlay after authorization.
	Dismiss()
}

// LogPresenter renders state transitions to the log. Used by the headless
// binary and as the fallback when no frontend is attached.
type LogPresenter struct {
	Logger zerolog.Logger
}

func (p *LogPresenter) ShowState(state State, message string) {
	p.Logger.Info().Str("state", string(state)).Str("message", message).Msg("authorization state")
}

func (p *LogPresenter) ShowRegistration(id *Identity) {
	// Headless: fall back to the generated defaults.
	p.Logger.Info().Str("device_id", id.DeviceID).Msg("registering with generated identity")
}

func (p *LogPresenter) Dismiss() {
	p.Logger.Info().Msg("authorized, overlay dismissed")
}

var _ Presenter = (*LogPresenter)(nil)
