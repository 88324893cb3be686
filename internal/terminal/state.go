package terminal

// State is the terminal's authorization state as shown to the operator.
type State string

const (
	// StateChecking is the initial state before the first server answer.
	StateChecking State = "checking"

	// StateRegistration means the identity is incomplete and the operator
	// must provide a name before the terminal registers itself.
	StateRegistration State = "registration"

	// StateAwaitingApproval means the device is registered and pending.
	StateAwaitingApproval State = "awaiting_approval"

	// StateAccessDenied means an administrator revoked or refused access.
	StateAccessDenied State = "access_denied"

	// StateAuthorized means the terminal may operate.
	StateAuthorized State = "authorized"

	// StateError means the last check failed; the loop keeps trying.
	StateError State = "error"

	// StateNoDeviceID means no identifier could be established at all.
	StateNoDeviceID State = "no_device_id"
)

// Waiting reports whether the state is one the operator is actively waiting
// out. Waiting states poll faster and force a fresh read on the server.
func (s State) Waiting() bool {
	return s == StateAwaitingApproval || s == StateAccessDenied
}
