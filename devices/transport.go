package devices

import (
	"net/http"

	xoauth2 "golang.org/x/oauth2"

	"github.com/jrsteele09/smartrent-bridge/token"
)

// headerTransport adds the fixed client identification headers to every
// device request.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	for k, v := range token.APIHeaders() {
		out.Header[k] = v
	}
	return t.base.RoundTrip(out)
}

// sourceErrorMarker tags token source failures so the client can tell them
// apart from network failures once http.Client has wrapped them.
type sourceErrorMarker struct {
	source xoauth2.TokenSource
}

func (m *sourceErrorMarker) Token() (*xoauth2.Token, error) {
	tok, err := m.source.Token()
	if err != nil {
		return nil, &sourceError{err: err}
	}
	return tok, nil
}

type sourceError struct {
	err error
}

func (e *sourceError) Error() string {
	return e.err.Error()
}

func (e *sourceError) Unwrap() error {
	return e.err
}
