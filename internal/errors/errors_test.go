package errors_test

import (
	stderrors "errors"
	"net"
	"testing"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestMissingCredentialsError(t *testing.T) {
	err := errors.Wrapf(&errors.MissingCredentialsError{Field: "password"}, "get access token")

	require.ErrorIs(t, err, errors.ErrMissingCredentials)
	var missing *errors.MissingCredentialsError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "password", missing.Field)
}

func TestRequestError(t *testing.T) {
	err := &errors.RequestError{Op: "refresh", Status: 500}

	require.ErrorIs(t, err, errors.ErrRequestFailed)
	require.Contains(t, err.Error(), "500")
}

func TestTransportErrorUnwrapsCause(t *testing.T) {
	cause := &net.OpError{Op: "dial", Err: stderrors.New("connection refused")}
	err := &errors.TransportError{Op: "create session", Err: cause}

	require.ErrorIs(t, err, errors.ErrTransport)
	var opErr *net.OpError
	require.True(t, errors.As(err, &opErr))
}

func TestPersistenceErrorUnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := &errors.PersistenceError{Err: cause}

	require.ErrorIs(t, err, errors.ErrPersistence)
	require.ErrorIs(t, err, cause)
}

func TestWrapfNil(t *testing.T) {
	require.NoError(t, errors.Wrapf(nil, "nothing"))
}
