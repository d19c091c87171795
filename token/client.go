// Package token exchanges SmartRent credentials for OAuth tokens. It formats
// requests and classifies responses; deciding when to refresh or log in again
// is left to the caller.
package token

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/oauth2"
	"github.com/jrsteele09/smartrent-bridge/oauthmodel"
)

const (
	RouteSessions = "/sessions"
	RouteTokens   = "/tokens"

	// RefreshHeader carries the refresh token on /tokens requests.
	RefreshHeader = "Authorization-X-Refresh"

	formContentType = "application/x-www-form-urlencoded; charset=utf-8"
)

// Operation names, used in errors and logs
const (
	OpCreateSession    = "create session"
	OpTwoFactorSession = "create two-factor session"
	OpRefreshSession   = "refresh session"
)

// Exchanger performs the three credential exchanges. Each call is a single
// request with no retries.
type Exchanger interface {
	ExchangeBasic(ctx context.Context, creds oauthmodel.LoginCredentials) (oauth2.SessionResult, error)
	ExchangeTwoFactor(ctx context.Context, creds oauthmodel.TwoFactorCredentials) (oauth2.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (oauth2.TokenResponse, error)
}

var _ Exchanger = (*Client)(nil)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default client, which only sets a timeout.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

func NewClient(baseURL string, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "token").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExchangeBasic posts an email and password to /sessions. The result is either
// a token payload or a two-factor challenge.
func (c *Client) ExchangeBasic(ctx context.Context, creds oauthmodel.LoginCredentials) (oauth2.SessionResult, error) {
	req, err := c.newFormRequest(ctx, creds.Form().Encode())
	if err != nil {
		return oauth2.SessionResult{}, err
	}
	body, err := c.do(req, OpCreateSession)
	if err != nil {
		return oauth2.SessionResult{}, err
	}
	result, err := oauth2.DecodeSessionResponse(body)
	if err != nil {
		return oauth2.SessionResult{}, fmt.Errorf("%s: %w", OpCreateSession, err)
	}
	c.logger.Debug().Stringer("result", result.Kind).Msg("Session response received")
	return result, nil
}

// ExchangeTwoFactor completes a challenged login with the continuation token
// and the user's one-time code.
func (c *Client) ExchangeTwoFactor(ctx context.Context, creds oauthmodel.TwoFactorCredentials) (oauth2.TokenResponse, error) {
	req, err := c.newFormRequest(ctx, creds.Form().Encode())
	if err != nil {
		return oauth2.TokenResponse{}, err
	}
	body, err := c.do(req, OpTwoFactorSession)
	if err != nil {
		return oauth2.TokenResponse{}, err
	}
	token, err := oauth2.DecodeTokenResponse(body)
	if err != nil {
		return oauth2.TokenResponse{}, fmt.Errorf("%s: %w", OpTwoFactorSession, err)
	}
	return token, nil
}

// Refresh exchanges a refresh token for a new token payload. The refresh token
// travels in the Authorization-X-Refresh header, not the body.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (oauth2.TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteTokens, nil)
	if err != nil {
		return oauth2.TokenResponse{}, fmt.Errorf("%s: build request: %w", OpRefreshSession, err)
	}
	req.Header = AuthHeaders()
	req.Header.Set(RefreshHeader, refreshToken)

	body, err := c.do(req, OpRefreshSession)
	if err != nil {
		return oauth2.TokenResponse{}, err
	}
	token, err := oauth2.DecodeTokenResponse(body)
	if err != nil {
		return oauth2.TokenResponse{}, fmt.Errorf("%s: %w", OpRefreshSession, err)
	}
	return token, nil
}

func (c *Client) newFormRequest(ctx context.Context, form string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteSessions, strings.NewReader(form))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header = AuthHeaders()
	req.Header.Set("Content-Type", formContentType)
	return req, nil
}

// do sends the request and classifies the outcome: 401/403 become
// ErrInvalidCredentials, other error statuses a RequestError, and failures with
// no response a TransportError.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("No response from SmartRent")
		return nil, &errors.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Response")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("Credentials rejected")
		return nil, fmt.Errorf("%s: %w (status %d)", op, errors.ErrInvalidCredentials, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error().Str("op", op).Int("status", resp.StatusCode).Msg("Request failed")
		return nil, &errors.RequestError{Op: op, Status: resp.StatusCode}
	}

	body, err := ReadBody(resp)
	if err != nil {
		return nil, &errors.TransportError{Op: op, Err: err}
	}
	return body, nil
}
