package auth

// State is the lifecycle position of the managed session.
type State int

const (
	// NoSession means nothing was loaded from storage and no login has succeeded.
	NoSession State = iota
	// HasValidSession means the session's validity window has not elapsed.
	HasValidSession
	// HasExpiredSession means a session exists but its access token lapsed.
	HasExpiredSession
	// AwaitingTwoFactor means a password login returned a two-factor challenge.
	AwaitingTwoFactor
	// Authenticated means the last call minted a new session by login or refresh.
	Authenticated
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case HasValidSession:
		return "valid_session"
	case HasExpiredSession:
		return "expired_session"
	case AwaitingTwoFactor:
		return "awaiting_two_factor"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
