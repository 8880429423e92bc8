// Package authstate holds the authorization state machine shared by the
// server's request gate and the client's navigation gate. The state is
// derived, never stored: it is a function of whether a valid session exists
// and whether the account finished onboarding.
package authstate

// State is the derived authorization state of a session.
type State int

const (
	// Anonymous means no valid session token.
	Anonymous State = iota
	// PendingOnboarding means a valid session for an account that has not
	// completed its profile.
	PendingOnboarding
	// Active means a valid session for an onboarded account.
	Active
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case PendingOnboarding:
		return "pending_onboarding"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// StateFor derives the authorization state from the two session flags.
// onboarded is ignored when authenticated is false.
func StateFor(authenticated, onboarded bool) State {
	if !authenticated {
		return Anonymous
	}
	if !onboarded {
		return PendingOnboarding
	}
	return Active
}
