package filestore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/sessions"
	"github.com/jrsteele09/smartrent-bridge/sessions/filestore"
	"github.com/stretchr/testify/require"
)

func newSession() sessions.Session {
	return sessions.Session{
		UserID:       42,
		AccessToken:  "AT",
		RefreshToken: "RT",
		Expires:      time.Date(2033, 5, 18, 3, 33, 19, 900*int(time.Millisecond), time.UTC),
	}
}

func TestLoadAbsent(t *testing.T) {
	store := filestore.New(t.TempDir())

	got, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, got)

	exists, err := store.Exists()
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	store := filestore.New(root)
	s := newSession()

	require.NoError(t, store.Save(s))
	require.Equal(t, filepath.Join(root, "smartrent", "session.json"), store.Path())

	got, err := filestore.New(root).Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, s.UserID, got.UserID)
	require.Equal(t, s.AccessToken, got.AccessToken)
	require.Equal(t, s.RefreshToken, got.RefreshToken)
	require.True(t, s.Expires.Equal(got.Expires))
	require.Equal(t, s.Expires.UnixMilli(), got.Expires.UnixMilli())
}

func TestSaveWritesDocumentedFormat(t *testing.T) {
	store := filestore.New(t.TempDir())
	s := newSession()
	s.Expires = sessions.ExpiryFromUnix(2000000000)
	require.NoError(t, store.Save(s))

	b, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Equal(t, float64(42), raw["userId"])
	require.Equal(t, "AT", raw["accessToken"])
	require.Equal(t, "RT", raw["refreshToken"])
	require.Equal(t, "2033-05-18T03:33:19.900Z", raw["expires"])
}

func TestSaveOverwrites(t *testing.T) {
	store := filestore.New(t.TempDir())
	require.NoError(t, store.Save(newSession()))

	next := newSession()
	next.AccessToken = "AT2"
	next.RefreshToken = "RT2"
	require.NoError(t, store.Save(next))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "AT2", got.AccessToken)
	require.Equal(t, "RT2", got.RefreshToken)
}

func TestSaveRejectsPartialSession(t *testing.T) {
	store := filestore.New(t.TempDir())
	s := newSession()
	s.RefreshToken = ""

	require.ErrorIs(t, store.Save(s), errors.ErrIncompleteSession)
	exists, err := store.Exists()
	require.NoError(t, err)
	require.False(t, exists)
}

func TestLoadCorruptRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{not json"},
		{"empty file", ""},
		{"no access token", `{"userId":1,"refreshToken":"RT","expires":"2033-05-18T03:33:19.900Z"}`},
		{"bad expiry", `{"userId":1,"accessToken":"AT","refreshToken":"RT","expires":"tomorrow"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			store := filestore.New(root)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0o600))

			got, err := store.Load()
			require.ErrorIs(t, err, errors.ErrCorruptSessionRecord)
			require.Nil(t, got)
		})
	}
}

func TestLoadAllowsMissingRefreshToken(t *testing.T) {
	store := filestore.New(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	content := `{"userId":7,"accessToken":"AT","refreshToken":"","expires":"2020-01-01T00:00:00.000Z"}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o600))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "", got.RefreshToken)
	require.False(t, got.CanRefresh())
}

func TestClear(t *testing.T) {
	store := filestore.New(t.TempDir())
	require.NoError(t, store.Clear(), "clearing an absent record")

	require.NoError(t, store.Save(newSession()))
	exists, err := store.Exists()
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, store.Clear())
	exists, err = store.Exists()
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, store.Clear())
}
