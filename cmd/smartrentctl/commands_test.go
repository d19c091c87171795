package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

type fakeSmartRent struct {
	sessionsBody string
}

func newFakeSmartRent(t *testing.T) (*fakeSmartRent, *httptest.Server) {
	t.Helper()
	f := &fakeSmartRent{sessionsBody: `{"data":{"user_id":5,"access_token":"AT","refresh_token":"RT","expires":4102444800}}`}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, f.sessionsBody)
	})
	mux.HandleFunc("GET /api/v1/units", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer AT" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"records":[{"id":1,"marketing_name":"Apt 1","has_hub":true,"hub_id":3}]}`)
	})
	mux.HandleFunc("GET /api/v1/hubs/3/rooms", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":1,"name":"Hall","devices":[
			{"id":7,"name":"Front Door","type":"entry_control","online":true,"attributes":{"locked":true},"room":{"id":1,"name":"Hall","hub_id":3}},
			{"id":12,"name":"Thermostat","type":"thermostat","online":true,"attributes":{},"room":{"id":1,"name":"Hall","hub_id":3}}
		]}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func setupEnv(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	color.NoColor = true
	root := t.TempDir()
	t.Setenv("STORAGE_PATH", root)
	t.Setenv("SMARTRENT_API_URL", srv.URL+"/api/v1")
	t.Setenv("SMARTRENT_EMAIL", "resident@example.com")
	t.Setenv("SMARTRENT_PASSWORD", "pw")
	t.Setenv("SMARTRENT_TFA_CODE", "")
	t.Setenv("SMARTRENT_UNIT_NAME", "")
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := BuildRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginStatusLogout(t *testing.T) {
	_, srv := newFakeSmartRent(t)
	root := setupEnv(t, srv)

	out, err := execute(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "No session")

	out, err = execute(t, "login")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in.")
	require.Contains(t, out, filepath.Join(root, "smartrent", "session.json"))

	out, err = execute(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "user:    5")
	require.Contains(t, out, "(valid)")

	out, err = execute(t, "devices")
	require.NoError(t, err)
	require.Contains(t, out, "2 devices")
	require.Contains(t, out, "Front Door")
	require.Contains(t, out, "unsupported")

	out, err = execute(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")

	out, err = execute(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "No session")
}

func TestLoginRequiresTwoFactorCode(t *testing.T) {
	f, srv := newFakeSmartRent(t)
	setupEnv(t, srv)
	f.sessionsBody = `{"data":{"tfa_api_token":"T"}}`

	out, err := execute(t, "login")
	require.ErrorIs(t, err, errors.ErrMissingTwoFactorCode)
	require.Contains(t, out, "2FA code required")
	require.True(t, strings.Contains(out, "--tfa-code"))
}

func TestLoginMissingPassword(t *testing.T) {
	_, srv := newFakeSmartRent(t)
	setupEnv(t, srv)
	t.Setenv("SMARTRENT_PASSWORD", "")

	out, err := execute(t, "login")
	require.ErrorIs(t, err, errors.ErrMissingCredentials)
	require.Contains(t, out, "Password required")
}
