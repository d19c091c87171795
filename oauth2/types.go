package oauth2

// ResultKind identifies which variant of the /sessions response was returned.
type ResultKind int

const (
	// UnknownResult is the zero value and never produced by a successful decode.
	UnknownResult ResultKind = iota

	// TokenResult means authentication completed and tokens were issued.
	// Returned by: POST /sessions (username/password or 2FA continuation), POST /tokens
	TokenResult

	// TwoFactorResult means the account requires a second factor. The response
	// only carries a short-lived continuation token.
	// Returned by: POST /sessions with username/password
	TwoFactorResult
)

func (k ResultKind) String() string {
	switch k {
	case TokenResult:
		return "oauth"
	case TwoFactorResult:
		return "two_factor"
	default:
		return "unknown"
	}
}

// SessionResult is the tagged union returned by the session-creation endpoint.
// Exactly one of Token or Challenge is set, matching Kind.
type SessionResult struct {
	Kind      ResultKind
	Token     *TokenResponse
	Challenge *TwoFactorChallenge
}

// TwoFactorChallenge is returned when a password login needs a one-time code.
type TwoFactorChallenge struct {
	// TfaAPIToken is single use and time bounded by the server. It is sent back
	// with the user's code as the tfa_api_token form field.
	TfaAPIToken string `json:"tfa_api_token"`
}
