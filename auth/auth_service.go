package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/oauth2"
	"github.com/jrsteele09/smartrent-bridge/oauthmodel"
	"github.com/jrsteele09/smartrent-bridge/sessions"
	"github.com/jrsteele09/smartrent-bridge/token"
)

// acquireKey groups concurrent refresh and re-authentication attempts. There
// is only ever one session per process, so a single key suffices.
const acquireKey = "session"

// Credentials are the inputs supplied by the embedding application. The
// two-factor code is only used when the server challenges a password login.
type Credentials struct {
	Login         oauthmodel.LoginCredentials
	TwoFactorCode string
}

// SessionManager turns credentials into a usable SmartRent access token. It
// reuses the stored session while fresh, refreshes it when expired, and falls
// back to a full login (with optional two-factor step) when refresh is not
// possible. New sessions are persisted before the token is returned.
type SessionManager struct {
	repo      sessions.Repo
	exchanger token.Exchanger
	logger    zerolog.Logger
	nowTime   func() time.Time

	discardCorruptSession bool

	mu                sync.Mutex
	loaded            bool
	session           *sessions.Session
	state             State
	requiresTwoFactor bool

	// authMu serializes session-replacing exchanges so a refresh that
	// started before an interactive login cannot overwrite its result.
	authMu   sync.Mutex
	inflight singleflight.Group
}

// SessionManagerOption defines a function type to modify the SessionManager instance.
type SessionManagerOption func(*SessionManager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		m.nowTime = nowFunc
	}
}

// WithDiscardCorruptSession treats an unreadable session record as absent,
// logging a warning, instead of failing every call until it is cleared.
func WithDiscardCorruptSession(discard bool) SessionManagerOption {
	return func(m *SessionManager) {
		m.discardCorruptSession = discard
	}
}

func NewSessionManager(
	repo sessions.Repo,
	exchanger token.Exchanger,
	logger zerolog.Logger,
	options ...SessionManagerOption,
) (*SessionManager, error) {
	if repo == nil {
		return nil, errors.New("[NewSessionManager] session repo is required")
	}
	if exchanger == nil {
		return nil, errors.New("[NewSessionManager] token exchanger is required")
	}

	m := &SessionManager{
		repo:      repo,
		exchanger: exchanger,
		logger:    logger.With().Str("component", "auth").Logger(),
		nowTime:   time.Now,
		state:     NoSession,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// GetAccessToken returns a usable access token, making no network call while
// the current session is fresh. It is safe for concurrent use: callers that
// find the session unusable share a single refresh or login attempt.
//
// When a new session was obtained but could not be saved, the token is
// returned together with a *errors.PersistenceError. The session stays active
// in memory for the life of the process.
func (m *SessionManager) GetAccessToken(ctx context.Context, creds Credentials) (string, error) {
	if accessToken, ok, err := m.freshToken(); err != nil || ok {
		return accessToken, err
	}

	ch := m.inflight.DoChan(acquireKey, func() (any, error) {
		return m.acquire(context.WithoutCancel(ctx), creds)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		accessToken, _ := res.Val.(string)
		return accessToken, res.Err
	}
}

// Login always authenticates with the given credentials, replacing any
// existing session on success. It backs interactive login forms.
func (m *SessionManager) Login(ctx context.Context, creds Credentials) (string, error) {
	m.authMu.Lock()
	defer m.authMu.Unlock()
	return m.login(ctx, creds)
}

// Logout removes the durable session record and forgets the in-memory session.
func (m *SessionManager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.repo.Clear(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to delete SmartRent session")
		return &errors.PersistenceError{Err: err}
	}
	m.session = nil
	m.loaded = true
	m.setStateLocked(NoSession)
	m.logger.Info().Msg("Deleted SmartRent session")
	return nil
}

// HasStoredSession reports whether a durable session record exists.
func (m *SessionManager) HasStoredSession() (bool, error) {
	return m.repo.Exists()
}

// RequiresTwoFactor reports whether the last password login was challenged for
// a second factor.
func (m *SessionManager) RequiresTwoFactor() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requiresTwoFactor
}

// State returns the current lifecycle state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the in-memory session, if any.
func (m *SessionManager) Session() (sessions.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return sessions.Session{}, false
	}
	return *m.session, true
}

// freshToken loads the session on first use and returns its token when the
// validity window has not elapsed.
func (m *SessionManager) freshToken() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(); err != nil {
		return "", false, err
	}
	if m.session != nil && m.session.IsFresh(m.nowTime()) {
		m.setStateLocked(HasValidSession)
		return m.session.AccessToken, true, nil
	}
	return "", false, nil
}

func (m *SessionManager) loadLocked() error {
	if m.loaded {
		return nil
	}
	s, err := m.repo.Load()
	if err != nil {
		if m.discardCorruptSession && errors.Is(err, errors.ErrCorruptSessionRecord) {
			m.logger.Warn().Err(err).Msg("Ignoring corrupt SmartRent session record")
			m.loaded = true
			m.setStateLocked(NoSession)
			return nil
		}
		m.logger.Error().Err(err).Msg("Failed to load SmartRent session")
		return errors.Wrapf(err, "load session")
	}
	m.loaded = true
	m.session = s
	if s == nil {
		m.setStateLocked(NoSession)
	}
	return nil
}

// acquire runs inside the single-flight group. It re-checks freshness because
// a previous flight or an interactive login may have just replaced the session.
func (m *SessionManager) acquire(ctx context.Context, creds Credentials) (string, error) {
	m.authMu.Lock()
	defer m.authMu.Unlock()

	m.mu.Lock()
	if err := m.loadLocked(); err != nil {
		m.mu.Unlock()
		return "", err
	}
	var current *sessions.Session
	if m.session != nil {
		s := *m.session
		current = &s
	}
	if current != nil && current.IsFresh(m.nowTime()) {
		m.setStateLocked(HasValidSession)
		m.mu.Unlock()
		return current.AccessToken, nil
	}
	if current != nil {
		m.setStateLocked(HasExpiredSession)
	}
	m.mu.Unlock()

	if current != nil {
		accessToken, fallThrough, err := m.refresh(ctx, *current)
		if !fallThrough {
			return accessToken, err
		}
	}
	return m.login(ctx, creds)
}

// refresh attempts a token refresh. fallThrough is true when the caller should
// continue with a full login: the refresh token is missing or was rejected.
// The stale session is left in storage until a login replaces it.
func (m *SessionManager) refresh(ctx context.Context, current sessions.Session) (accessToken string, fallThrough bool, err error) {
	if !current.CanRefresh() {
		m.logger.Warn().Msg("No refresh token, logging in again")
		return "", true, nil
	}

	tok, err := m.exchanger.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			m.logger.Warn().Err(err).Msg("Refresh token rejected, logging in again")
			return "", true, nil
		}
		m.logger.Error().Err(err).Msg("Failed to refresh session")
		return "", false, err
	}
	accessToken, err = m.storeSession(tok.Session(), true)
	return accessToken, false, err
}

func (m *SessionManager) login(ctx context.Context, creds Credentials) (string, error) {
	m.mu.Lock()
	m.requiresTwoFactor = false
	m.mu.Unlock()

	if err := creds.Login.Validate(); err != nil {
		var missing *errors.MissingCredentialsError
		if errors.As(err, &missing) {
			m.logger.Error().Str("field", missing.Field).Msg("SmartRent credentials incomplete")
		}
		return "", err
	}

	result, err := m.exchanger.ExchangeBasic(ctx, creds.Login)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			m.logger.Error().Msg("Invalid email or password")
		} else {
			m.logger.Error().Err(err).Msg("Failed to create session")
		}
		return "", err
	}

	switch result.Kind {
	case oauth2.TokenResult:
		return m.storeSession(result.Token.Session(), false)
	case oauth2.TwoFactorResult:
		return m.completeTwoFactor(ctx, result.Challenge, creds.TwoFactorCode)
	}
	return "", fmt.Errorf("%s: %w: unexpected result %s", token.OpCreateSession, errors.ErrMalformedResponse, result.Kind)
}

func (m *SessionManager) completeTwoFactor(ctx context.Context, challenge *oauth2.TwoFactorChallenge, code string) (string, error) {
	m.mu.Lock()
	m.requiresTwoFactor = true
	m.setStateLocked(AwaitingTwoFactor)
	m.mu.Unlock()
	m.logger.Debug().Msg("2FA enabled")

	if strings.TrimSpace(code) == "" {
		m.logger.Error().Msg("2FA code required")
		return "", errors.ErrMissingTwoFactorCode
	}

	tok, err := m.exchanger.ExchangeTwoFactor(ctx, oauthmodel.TwoFactorCredentials{
		TfaAPIToken: challenge.TfaAPIToken,
		Code:        code,
	})
	if err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			m.logger.Error().Msg("Invalid 2FA code")
			return "", fmt.Errorf("%w: %s", errors.ErrInvalidTwoFactorCode, err.Error())
		}
		m.logger.Error().Err(err).Msg("Failed to create two-factor authenticated session")
		return "", err
	}
	return m.storeSession(tok.Session(), false)
}

// storeSession makes s the active session, then persists it. A save failure
// does not revoke the in-memory session.
func (m *SessionManager) storeSession(s sessions.Session, refreshed bool) (string, error) {
	m.mu.Lock()
	m.session = &s
	m.loaded = true
	m.setStateLocked(Authenticated)
	m.mu.Unlock()

	verb := "Created"
	if refreshed {
		verb = "Refreshed"
	}
	m.logger.Info().Int("user_id", s.UserID).Time("expires", s.Expires).Msg(verb + " SmartRent session")

	if err := m.repo.Save(s); err != nil {
		m.logger.Error().Err(err).Msg("Failed to save SmartRent session")
		return s.AccessToken, &errors.PersistenceError{Err: err}
	}
	return s.AccessToken, nil
}

func (m *SessionManager) setStateLocked(state State) {
	if m.state == state {
		return
	}
	m.logger.Debug().Stringer("from", m.state).Stringer("to", state).Msg("Session state")
	m.state = state
}
