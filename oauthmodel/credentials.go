package oauthmodel

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// LoginCredentials is the password login posted to /sessions.
// These are transient and never persisted.
type LoginCredentials struct {
	// Email is the SmartRent account email, sent as the "username" form field.
	// Required: Yes
	// Example: "resident@example.com"
	Email string

	// Password is the SmartRent account password.
	// Required: Yes
	// Security: Never log or expose this value
	Password string
}

// Validate checks that both fields are present. The error names the first
// missing field, email before password.
func (c LoginCredentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return &errors.MissingCredentialsError{Field: FieldEmail}
	}
	if c.Password == "" {
		return &errors.MissingCredentialsError{Field: FieldPassword}
	}
	return nil
}

// Form encodes the credentials as the /sessions form body.
func (c LoginCredentials) Form() url.Values {
	return url.Values{
		"username": {strings.TrimSpace(c.Email)},
		"password": {c.Password},
	}
}

// TwoFactorCredentials completes a login that returned a two-factor challenge.
// It is joined to the original login only by the continuation token; the
// password is never sent again.
type TwoFactorCredentials struct {
	// TfaAPIToken is the continuation token from the two-factor challenge.
	// Required: Yes
	// Usage: Single use, expires shortly after the password login
	TfaAPIToken string

	// Code is the one-time code entered by the user.
	// Required: Yes
	// Example: "123456"
	Code string
}

func (c TwoFactorCredentials) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return errors.ErrMissingTwoFactorCode
	}
	if c.TfaAPIToken == "" {
		return errors.Wrapf(errors.ErrMalformedResponse, "two-factor continuation token missing")
	}
	return nil
}

// Form encodes the credentials as the /sessions form body.
func (c TwoFactorCredentials) Form() url.Values {
	return url.Values{
		"tfa_api_token": {c.TfaAPIToken},
		"token":         {strings.TrimSpace(c.Code)},
	}
}
