package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the session lifecycle
var (
	// Local validation errors, detected before any network call
	ErrMissingCredentials   = errors.New("missing credentials")
	ErrMissingTwoFactorCode = errors.New("2FA code required")

	// Remote rejection errors
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidTwoFactorCode = errors.New("invalid 2FA code")

	// Upstream and transport errors
	ErrRequestFailed     = errors.New("request failed")
	ErrMalformedResponse = errors.New("malformed response")
	ErrTransport         = errors.New("transport error")

	// Storage errors
	ErrPersistence          = errors.New("session persistence failed")
	ErrCorruptSessionRecord = errors.New("corrupt session record")
	ErrIncompleteSession    = errors.New("incomplete session")
	ErrNoSession            = errors.New("no session")

	// Device errors
	ErrUnitNotFound      = errors.New("unit not found")
	ErrNoHub             = errors.New("no SmartRent hub found")
	ErrUnsupportedDevice = errors.New("unsupported device")
	ErrAccessoryNotFound = errors.New("accessory not found")
	ErrReadOnly          = errors.New("characteristic is read only")
)

// MissingCredentialsError names the credential field that was not supplied.
type MissingCredentialsError struct {
	Field string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials: %s required", e.Field)
}

func (e *MissingCredentialsError) Is(target error) bool {
	return target == ErrMissingCredentials
}

// RequestError is an HTTP error status returned by the vendor API.
type RequestError struct {
	Op     string
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, ErrRequestFailed, e.Status)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// TransportError wraps a failure where no response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// PersistenceError wraps a failure to write or remove the durable session record.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPersistence, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
