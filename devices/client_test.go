package devices_test

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	xoauth2 "golang.org/x/oauth2"

	"github.com/jrsteele09/smartrent-bridge/devices"
	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/token"
)

const (
	unitsBody = `{"current_page":1,"total_pages":1,"total_records":2,"records":[
		{"id":10,"marketing_name":"Apt 101","has_hub":true,"hub_id":500},
		{"id":11,"marketing_name":"Apt 202","has_hub":true,"hub_id":600}
	]}`
	roomsBody = `{"data":[
		{"id":1,"name":"Living","devices":[
			{"id":7,"name":"Front Door","type":"entry_control","battery_powered":true,"battery_level":80,"attributes":{"locked":true,"access_codes_supported":true},"room":{"id":1,"name":"Living","hub_id":600}}
		]},
		{"id":2,"name":"Kitchen","devices":[
			{"id":8,"name":"Sink","type":"sensor_notification","battery_powered":true,"battery_level":90,"attributes":{"leak":false},"room":{"id":2,"name":"Kitchen","hub_id":600}},
			{"id":9,"name":"Lamp","type":"switch_binary","battery_powered":false,"battery_level":null,"attributes":{"on":false},"room":{"id":2,"name":"Kitchen","hub_id":600}}
		]}
	]}`
)

type recorded struct {
	method string
	path   string
	header http.Header
	body   string
}

type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recorded
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{t: t, routes: map[string]func(http.ResponseWriter, *http.Request){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.requests = append(api.requests, recorded{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: string(b)})
		handler, ok := api.routes[r.Method+" "+r.URL.Path]
		api.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) reply(method, path string, status int, body string) {
	a.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newClient(srv *httptest.Server, source xoauth2.TokenSource) *devices.Client {
	return devices.NewClient(srv.URL+"/api/v1", source, zerolog.Nop(), devices.WithBaseTransport(srv.Client().Transport))
}

func staticSource(accessToken string) xoauth2.TokenSource {
	return xoauth2.StaticTokenSource(&xoauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

type failingSource struct{ err error }

func (s failingSource) Token() (*xoauth2.Token, error) { return nil, s.err }

func TestDiscoverDevicesNamedUnit(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/v1/units", http.StatusOK, unitsBody)
	api.reply(http.MethodGet, "/api/v1/hubs/600/rooms", http.StatusOK, roomsBody)

	found, err := newClient(srv, staticSource("AT")).DiscoverDevices(context.Background(), "Apt 202")
	require.NoError(t, err)
	require.Len(t, found, 3)
	require.Equal(t, devices.TypeEntryControl, found[0].Type)
	require.Equal(t, 600, found[0].HubID())
	require.Equal(t, "7", found[0].Serial())
	locked, ok := found[0].Attributes.Bool("locked")
	require.True(t, ok)
	require.True(t, locked)
	require.Nil(t, found[2].BatteryLevel)

	require.Len(t, api.requests, 2)
	for _, req := range api.requests {
		require.Equal(t, "Bearer AT", req.header.Get("Authorization"))
		require.Equal(t, "application/json", req.header.Get("Accept"))
		require.Equal(t, "ios-resapp-"+token.AppVersion, req.header.Get("X-AppVersion"))
	}
}

func TestDiscoverDevicesDefaultsToFirstUnit(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/v1/units", http.StatusOK, unitsBody)
	api.reply(http.MethodGet, "/api/v1/hubs/500/rooms", http.StatusOK, `{"data":[]}`)

	found, err := newClient(srv, staticSource("AT")).DiscoverDevices(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, found)
	require.Equal(t, "/api/v1/hubs/500/rooms", api.requests[1].path)
}

func TestDiscoverDevicesUnitNotFound(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/v1/units", http.StatusOK, unitsBody)

	_, err := newClient(srv, staticSource("AT")).DiscoverDevices(context.Background(), "Penthouse")
	require.ErrorIs(t, err, errors.ErrUnitNotFound)
	require.Len(t, api.requests, 1)
}

func TestDiscoverDevicesNoHub(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/v1/units", http.StatusOK, `{"records":[{"id":10,"marketing_name":"Apt 101","has_hub":false,"hub_id":0}]}`)

	_, err := newClient(srv, staticSource("AT")).DiscoverDevices(context.Background(), "")
	require.ErrorIs(t, err, errors.ErrNoHub)
}

func TestGetState(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/v1/hubs/600/devices/7", http.StatusOK, `{"data":{"id":7,"attributes":{"locked":false}}}`)

	attrs, err := newClient(srv, staticSource("AT")).GetState(context.Background(), 600, 7)
	require.NoError(t, err)
	require.Equal(t, devices.Attributes{"locked": false}, attrs)
}

func TestSetState(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.reply(http.MethodPatch, "/api/v1/hubs/600/devices/9", http.StatusOK, `{"data":{"id":9,"attributes":{"on":true}}}`)

	attrs, err := newClient(srv, staticSource("AT")).SetState(context.Background(), 600, 9, devices.Attributes{"on": true})
	require.NoError(t, err)
	on, _ := attrs.Bool("on")
	require.True(t, on)

	require.Len(t, api.requests, 1)
	require.JSONEq(t, `{"attributes":{"on":true}}`, api.requests[0].body)
	require.Equal(t, "application/json", api.requests[0].header.Get("Content-Type"))
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrInvalidCredentials},
		{"forbidden", http.StatusForbidden, errors.ErrInvalidCredentials},
		{"server error", http.StatusInternalServerError, errors.ErrRequestFailed},
		{"not found", http.StatusNotFound, errors.ErrRequestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, srv := newFakeAPI(t)
			api.reply(http.MethodGet, "/api/v1/hubs/1/devices/2", tt.status, `{}`)

			_, err := newClient(srv, staticSource("AT")).GetState(context.Background(), 1, 2)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestMalformedDeviceResponse(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.reply(http.MethodGet, "/api/v1/hubs/1/devices/2", http.StatusOK, `{"data":null}`)
	api.reply(http.MethodGet, "/api/v1/units", http.StatusOK, `not json`)
	client := newClient(srv, staticSource("AT"))

	_, err := client.GetState(context.Background(), 1, 2)
	require.ErrorIs(t, err, errors.ErrMalformedResponse)
	_, err = client.Units(context.Background())
	require.ErrorIs(t, err, errors.ErrMalformedResponse)
}

func TestTokenSourceFailureIsNotTransportError(t *testing.T) {
	api, srv := newFakeAPI(t)
	missing := &errors.MissingCredentialsError{Field: "email"}

	_, err := newClient(srv, failingSource{err: missing}).Units(context.Background())
	require.ErrorIs(t, err, errors.ErrMissingCredentials)
	require.False(t, stderrors.Is(err, errors.ErrTransport))
	require.Empty(t, api.requests)
}

func TestTransportFailure(t *testing.T) {
	_, srv := newFakeAPI(t)
	client := newClient(srv, staticSource("AT"))
	srv.Close()

	_, err := client.Units(context.Background())
	require.ErrorIs(t, err, errors.ErrTransport)
}
