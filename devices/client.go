package devices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	xoauth2 "golang.org/x/oauth2"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/token"
)

// Operation names, used in errors and logs
const (
	OpListUnits = "list units"
	OpListRooms = "list rooms"
	OpGetState  = "get device state"
	OpSetState  = "set device state"
)

// API is the device API surface used by the bridge.
type API interface {
	Units(ctx context.Context) ([]Unit, error)
	Rooms(ctx context.Context, hubID int) ([]Room, error)
	DiscoverDevices(ctx context.Context, unitName string) ([]Device, error)
	GetState(ctx context.Context, hubID, deviceID int) (Attributes, error)
	SetState(ctx context.Context, hubID, deviceID int, attrs Attributes) (Attributes, error)
}

var _ API = (*Client)(nil)

// Client sends device API requests with a bearer token taken from the
// configured token source on every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	timeout time.Duration
	base    http.RoundTripper
}

type ClientOption func(*Client)

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithBaseTransport sets the transport underneath the bearer and header layers.
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.base = rt
	}
}

func NewClient(baseURL string, source xoauth2.TokenSource, logger zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "devices").Logger(),
		timeout: 30 * time.Second,
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: &xoauth2.Transport{
			Source: &sourceErrorMarker{source: source},
			Base:   &headerTransport{base: c.base},
		},
	}
	return c
}

type unitRecords struct {
	Records      []Unit `json:"records"`
	CurrentPage  int    `json:"current_page"`
	TotalPages   int    `json:"total_pages"`
	TotalRecords int    `json:"total_records"`
}

type roomRecords struct {
	Data []Room `json:"data"`
}

type deviceResponse struct {
	Data *struct {
		Attributes Attributes `json:"attributes"`
	} `json:"data"`
}

func (c *Client) Units(ctx context.Context) ([]Unit, error) {
	var out unitRecords
	if err := c.call(ctx, http.MethodGet, "/units", nil, OpListUnits, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

func (c *Client) Rooms(ctx context.Context, hubID int) ([]Room, error) {
	var out roomRecords
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/hubs/%d/rooms", hubID), nil, OpListRooms, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DiscoverDevices lists every device in the named unit, or in the first unit
// when unitName is empty.
func (c *Client) DiscoverDevices(ctx context.Context, unitName string) ([]Device, error) {
	units, err := c.Units(ctx)
	if err != nil {
		return nil, err
	}

	unit, err := selectUnit(units, unitName)
	if err != nil {
		c.logger.Error().Str("unit", unitName).Msg("Unit not found")
		return nil, err
	}
	if unit.HubID == 0 {
		c.logger.Error().Str("unit", unit.MarketingName).Msg("No SmartRent hub found")
		return nil, fmt.Errorf("unit %q: %w", unit.MarketingName, errors.ErrNoHub)
	}

	rooms, err := c.Rooms(ctx, unit.HubID)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Int("rooms", len(rooms)).Msg("Found rooms")

	var found []Device
	for _, room := range rooms {
		found = append(found, room.Devices...)
	}
	if len(found) == 0 {
		c.logger.Error().Int("hub_id", unit.HubID).Msg("No devices found")
	} else {
		c.logger.Info().Int("devices", len(found)).Msg("Found devices")
	}
	return found, nil
}

func selectUnit(units []Unit, unitName string) (Unit, error) {
	if unitName == "" {
		if len(units) == 0 {
			return Unit{}, fmt.Errorf("no units on account: %w", errors.ErrUnitNotFound)
		}
		return units[0], nil
	}
	for _, u := range units {
		if u.MarketingName == unitName {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("unit %q: %w", unitName, errors.ErrUnitNotFound)
}

// GetState returns the device's current attributes.
func (c *Client) GetState(ctx context.Context, hubID, deviceID int) (Attributes, error) {
	var out deviceResponse
	if err := c.call(ctx, http.MethodGet, devicePath(hubID, deviceID), nil, OpGetState, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("%s: %w: data missing", OpGetState, errors.ErrMalformedResponse)
	}
	return out.Data.Attributes, nil
}

// SetState sends a partial attribute update and returns the device's
// attributes as reported after the update.
func (c *Client) SetState(ctx context.Context, hubID, deviceID int, attrs Attributes) (Attributes, error) {
	body, err := json.Marshal(map[string]Attributes{"attributes": attrs})
	if err != nil {
		return nil, fmt.Errorf("%s: encode attributes: %w", OpSetState, err)
	}
	var out deviceResponse
	if err := c.call(ctx, http.MethodPatch, devicePath(hubID, deviceID), body, OpSetState, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, fmt.Errorf("%s: %w: data missing", OpSetState, errors.ErrMalformedResponse)
	}
	return out.Data.Attributes, nil
}

func devicePath(hubID, deviceID int) string {
	return fmt.Sprintf("/hubs/%d/devices/%d", hubID, deviceID)
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, op string, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var tokenErr *sourceError
		if errors.As(err, &tokenErr) {
			return fmt.Errorf("%s: access token: %w", op, tokenErr.err)
		}
		c.logger.Error().Err(err).Str("op", op).Msg("No response from SmartRent")
		return &errors.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Response")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("Access token rejected")
		return fmt.Errorf("%s: %w (status %d)", op, errors.ErrInvalidCredentials, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error().Str("op", op).Int("status", resp.StatusCode).Msg("Request failed")
		return &errors.RequestError{Op: op, Status: resp.StatusCode}
	}

	b, err := token.ReadBody(resp)
	if err != nil {
		return &errors.TransportError{Op: op, Err: err}
	}
	if c.logger.GetLevel() <= zerolog.DebugLevel {
		c.logger.Debug().Str("op", op).RawJSON("body", compactJSON(b)).Msg("Response body")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, errors.ErrMalformedResponse, err)
	}
	return nil
}

// compactJSON returns b unchanged when it is not valid JSON wrapped as a string,
// so it can be logged with RawJSON.
func compactJSON(b []byte) []byte {
	if json.Valid(b) {
		return b
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
