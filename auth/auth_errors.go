package auth

import (
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/oauthmodel"
)

// LoginOutcome is the result code reported to interactive login forms.
type LoginOutcome string

const (
	LoginSucceeded            LoginOutcome = "success"
	LoginEmailRequired        LoginOutcome = "email_required"
	LoginPasswordRequired     LoginOutcome = "password_required"
	LoginTwoFactorRequired    LoginOutcome = "2fa_code_required"
	LoginInvalidTwoFactorCode LoginOutcome = "invalid_2fa_code"
	LoginInvalidCredentials   LoginOutcome = "invalid_credentials"
	LoginFailed               LoginOutcome = "failed"
)

var loginMessages = map[LoginOutcome]string{
	LoginSucceeded:            "Logged in",
	LoginEmailRequired:        "Email required",
	LoginPasswordRequired:     "Password required",
	LoginTwoFactorRequired:    "2FA code required",
	LoginInvalidTwoFactorCode: "Invalid 2FA code",
	LoginInvalidCredentials:   "Invalid email or password",
	LoginFailed:               "Login failed",
}

// Message returns a user-facing description of the outcome.
func (o LoginOutcome) Message() string {
	if msg, ok := loginMessages[o]; ok {
		return msg
	}
	return loginMessages[LoginFailed]
}

// ClassifyLoginError maps an error from Login to its outcome code.
func ClassifyLoginError(err error) LoginOutcome {
	if err == nil {
		return LoginSucceeded
	}

	var missing *errors.MissingCredentialsError
	switch {
	case errors.As(err, &missing):
		if missing.Field == oauthmodel.FieldEmail {
			return LoginEmailRequired
		}
		return LoginPasswordRequired
	case errors.Is(err, errors.ErrMissingTwoFactorCode):
		return LoginTwoFactorRequired
	case errors.Is(err, errors.ErrInvalidTwoFactorCode):
		return LoginInvalidTwoFactorCode
	case errors.Is(err, errors.ErrInvalidCredentials):
		return LoginInvalidCredentials
	}
	return LoginFailed
}
