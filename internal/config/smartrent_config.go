package config

import "time"

const (
	emailEnvVar                 = "SMARTRENT_EMAIL"
	passwordEnvVar              = "SMARTRENT_PASSWORD"
	tfaCodeEnvVar               = "SMARTRENT_TFA_CODE"
	unitNameEnvVar              = "SMARTRENT_UNIT_NAME"
	apiURLEnvVar                = "SMARTRENT_API_URL"
	requestTimeoutEnvVar        = "SMARTRENT_REQUEST_TIMEOUT"
	discardCorruptSessionEnvVar = "SMARTRENT_DISCARD_CORRUPT_SESSION"
)

const (
	DefaultAPIBaseURL     = "https://control.smartrent.com/api/v1"
	DefaultRequestTimeout = 30 * time.Second
)

type SmartRentConfig interface {
	GetEmail() string
	GetPassword() string
	GetTfaCode() string
	GetUnitName() string
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetDiscardCorruptSession() bool
}

type SmartRent struct{}

var _ SmartRentConfig = SmartRent{}

func (SmartRent) GetEmail() string {
	return GetEnv(emailEnvVar, "")
}

func (SmartRent) GetPassword() string {
	return GetEnv(passwordEnvVar, "")
}

// GetTfaCode returns the one-time two-factor code, if the user supplied one.
func (SmartRent) GetTfaCode() string {
	return GetEnv(tfaCodeEnvVar, "")
}

// GetUnitName returns the unit marketing name to control. Empty selects the first unit.
func (SmartRent) GetUnitName() string {
	return GetEnv(unitNameEnvVar, "")
}

func (SmartRent) GetAPIBaseURL() string {
	return GetEnv(apiURLEnvVar, DefaultAPIBaseURL)
}

func (SmartRent) GetRequestTimeout() time.Duration {
	return GetEnvDuration(requestTimeoutEnvVar, DefaultRequestTimeout)
}

// GetDiscardCorruptSession selects the corrupt session record policy. When true
// an unreadable session file is treated as absent instead of failing.
func (SmartRent) GetDiscardCorruptSession() bool {
	return GetEnvBool(discardCorruptSessionEnvVar, false)
}
