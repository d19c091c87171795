package auth_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/smartrent-bridge/auth"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

func TestClassifyLoginError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome auth.LoginOutcome
		message string
	}{
		{"success", nil, auth.LoginSucceeded, "Logged in"},
		{"email", &errors.MissingCredentialsError{Field: "email"}, auth.LoginEmailRequired, "Email required"},
		{"password", &errors.MissingCredentialsError{Field: "password"}, auth.LoginPasswordRequired, "Password required"},
		{"2fa required", errors.ErrMissingTwoFactorCode, auth.LoginTwoFactorRequired, "2FA code required"},
		{"2fa invalid", errors.Wrapf(errors.ErrInvalidTwoFactorCode, "two-factor session"), auth.LoginInvalidTwoFactorCode, "Invalid 2FA code"},
		{"invalid credentials", errors.ErrInvalidCredentials, auth.LoginInvalidCredentials, "Invalid email or password"},
		{"transport", &errors.TransportError{Op: "create session", Err: stderrors.New("timeout")}, auth.LoginFailed, "Login failed"},
		{"persistence", &errors.PersistenceError{Err: stderrors.New("disk full")}, auth.LoginFailed, "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := auth.ClassifyLoginError(tt.err)
			require.Equal(t, tt.outcome, outcome)
			require.Equal(t, tt.message, outcome.Message())
		})
	}
}
