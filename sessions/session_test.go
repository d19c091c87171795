package sessions_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/sessions"
	"github.com/stretchr/testify/require"
)

func TestExpiryFromUnix(t *testing.T) {
	got := sessions.ExpiryFromUnix(2000000000)

	require.Equal(t, int64(2000000000*1000-100), got.UnixMilli())
	require.Equal(t, time.UTC, got.Location())
}

func TestSessionIsFresh(t *testing.T) {
	expires := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := sessions.Session{AccessToken: "AT", RefreshToken: "RT", Expires: expires}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before expiry", expires.Add(-time.Minute), true},
		{"at expiry", expires, false},
		{"just after expiry", expires.Add(time.Millisecond), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.IsFresh(tt.now))
		})
	}
}

func TestSessionValidate(t *testing.T) {
	full := sessions.Session{UserID: 1, AccessToken: "AT", RefreshToken: "RT", Expires: time.Now()}
	require.NoError(t, full.Validate())

	noRefresh := full
	noRefresh.RefreshToken = ""
	require.ErrorIs(t, noRefresh.Validate(), errors.ErrIncompleteSession)

	noAccess := full
	noAccess.AccessToken = ""
	require.ErrorIs(t, noAccess.Validate(), errors.ErrIncompleteSession)

	noExpiry := full
	noExpiry.Expires = time.Time{}
	require.ErrorIs(t, noExpiry.Validate(), errors.ErrIncompleteSession)
}
