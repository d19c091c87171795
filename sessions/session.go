package sessions

import (
	"time"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

// ExpirySafetyMargin is subtracted from the server-issued expiry so a token is
// never presented at the exact instant it lapses.
const ExpirySafetyMargin = 100 * time.Millisecond

// Session is the durable SmartRent credential: the bearer token used for device
// requests, the refresh token that mints a new one, and the absolute expiry.
type Session struct {
	UserID       int       // Opaque SmartRent user identifier
	AccessToken  string    // Bearer credential for device API requests
	RefreshToken string    // Exchanged at /tokens for a new access token
	Expires      time.Time // Access token is usable while now < Expires
}

// ExpiryFromUnix converts the server's seconds-since-epoch expiry into the
// session expiry, applying ExpirySafetyMargin.
func ExpiryFromUnix(seconds int64) time.Time {
	return time.UnixMilli(seconds*1000 - ExpirySafetyMargin.Milliseconds()).UTC()
}

// IsFresh reports whether the access token is still inside its validity window.
func (s Session) IsFresh(now time.Time) bool {
	return now.Before(s.Expires)
}

// CanRefresh reports whether a refresh attempt is possible.
func (s Session) CanRefresh() bool {
	return s.RefreshToken != ""
}

// Validate rejects partially populated sessions, which must never be persisted.
func (s Session) Validate() error {
	switch {
	case s.AccessToken == "":
		return errors.Wrapf(errors.ErrIncompleteSession, "access token missing")
	case s.RefreshToken == "":
		return errors.Wrapf(errors.ErrIncompleteSession, "refresh token missing")
	case s.Expires.IsZero():
		return errors.Wrapf(errors.ErrIncompleteSession, "expiry missing")
	}
	return nil
}
