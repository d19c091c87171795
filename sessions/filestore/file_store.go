// Package filestore persists the SmartRent session as a JSON file beneath the
// bridge storage root.
package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/sessions"
)

const (
	DirName  = "smartrent"
	FileName = "session.json"

	// expiresLayout keeps millisecond precision, matching the ISO-8601 strings
	// written by earlier versions of the plugin.
	expiresLayout = "2006-01-02T15:04:05.000Z07:00"
)

var _ sessions.Repo = (*Store)(nil)

// record is the on-disk shape of a session.
type record struct {
	UserID       int    `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Expires      string `json:"expires"`
}

type Store struct {
	path string
}

// New returns a store for <storageRoot>/smartrent/session.json.
func New(storageRoot string) *Store {
	return &Store{path: filepath.Join(storageRoot, DirName, FileName)}
}

// Path returns the location of the session file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (*sessions.Session, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode session file %s: %w: %v", s.path, errors.ErrCorruptSessionRecord, err)
	}
	if strings.TrimSpace(rec.AccessToken) == "" {
		return nil, fmt.Errorf("session file %s: %w: access token missing", s.path, errors.ErrCorruptSessionRecord)
	}
	expires, err := time.Parse(time.RFC3339, rec.Expires)
	if err != nil {
		return nil, fmt.Errorf("session file %s: %w: invalid expiry %q", s.path, errors.ErrCorruptSessionRecord, rec.Expires)
	}

	return &sessions.Session{
		UserID:       rec.UserID,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		Expires:      expires.UTC(),
	}, nil
}

func (s *Store) Save(session sessions.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	b, err := json.MarshalIndent(record{
		UserID:       session.UserID,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Expires:      session.Expires.UTC().Format(expiresLayout),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir session dir: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat session file: %w", err)
}
