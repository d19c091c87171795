package auth

import (
	"context"

	xoauth2 "golang.org/x/oauth2"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
)

// TokenSource adapts the manager to golang.org/x/oauth2 so device requests can
// use an oauth2.Transport. Each Token call goes through GetAccessToken. A
// token obtained without being persisted is still handed out.
func (m *SessionManager) TokenSource(ctx context.Context, creds Credentials) xoauth2.TokenSource {
	return &tokenSource{ctx: ctx, manager: m, creds: creds}
}

type tokenSource struct {
	ctx     context.Context
	manager *SessionManager
	creds   Credentials
}

func (ts *tokenSource) Token() (*xoauth2.Token, error) {
	accessToken, err := ts.manager.GetAccessToken(ts.ctx, ts.creds)
	if err != nil && (accessToken == "" || !errors.Is(err, errors.ErrPersistence)) {
		return nil, err
	}

	tok := &xoauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if s, ok := ts.manager.Session(); ok && s.AccessToken == accessToken {
		tok.Expiry = s.Expires
	}
	return tok, nil
}
