package repofake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/smartrent-bridge/oauth2"
	"github.com/jrsteele09/smartrent-bridge/oauthmodel"
	"github.com/jrsteele09/smartrent-bridge/token"
)

var _ token.Exchanger = (*FakeExchanger)(nil)

var ErrUnexpectedCall = errors.New("unexpected call")

// FakeExchanger answers with the configured funcs and records every call. A nil
// func fails the call with ErrUnexpectedCall.
type FakeExchanger struct {
	lock sync.Mutex

	BasicFunc     func(creds oauthmodel.LoginCredentials) (oauth2.SessionResult, error)
	TwoFactorFunc func(creds oauthmodel.TwoFactorCredentials) (oauth2.TokenResponse, error)
	RefreshFunc   func(refreshToken string) (oauth2.TokenResponse, error)

	BasicCalls     []oauthmodel.LoginCredentials
	TwoFactorCalls []oauthmodel.TwoFactorCredentials
	RefreshCalls   []string
}

func NewFakeExchanger() *FakeExchanger {
	return &FakeExchanger{}
}

// TotalCalls returns the number of exchanges attempted.
func (f *FakeExchanger) TotalCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.BasicCalls) + len(f.TwoFactorCalls) + len(f.RefreshCalls)
}

func (f *FakeExchanger) ExchangeBasic(_ context.Context, creds oauthmodel.LoginCredentials) (oauth2.SessionResult, error) {
	f.lock.Lock()
	f.BasicCalls = append(f.BasicCalls, creds)
	fn := f.BasicFunc
	f.lock.Unlock()
	if fn == nil {
		return oauth2.SessionResult{}, ErrUnexpectedCall
	}
	return fn(creds)
}

func (f *FakeExchanger) ExchangeTwoFactor(_ context.Context, creds oauthmodel.TwoFactorCredentials) (oauth2.TokenResponse, error) {
	f.lock.Lock()
	f.TwoFactorCalls = append(f.TwoFactorCalls, creds)
	fn := f.TwoFactorFunc
	f.lock.Unlock()
	if fn == nil {
		return oauth2.TokenResponse{}, ErrUnexpectedCall
	}
	return fn(creds)
}

func (f *FakeExchanger) Refresh(_ context.Context, refreshToken string) (oauth2.TokenResponse, error) {
	f.lock.Lock()
	f.RefreshCalls = append(f.RefreshCalls, refreshToken)
	fn := f.RefreshFunc
	f.lock.Unlock()
	if fn == nil {
		return oauth2.TokenResponse{}, ErrUnexpectedCall
	}
	return fn(refreshToken)
}

// TokenResult wraps a token payload as a /sessions result.
func TokenResult(t oauth2.TokenResponse) oauth2.SessionResult {
	return oauth2.SessionResult{Kind: oauth2.TokenResult, Token: &t}
}

// ChallengeResult returns a /sessions result requiring a second factor.
func ChallengeResult(tfaAPIToken string) oauth2.SessionResult {
	return oauth2.SessionResult{Kind: oauth2.TwoFactorResult, Challenge: &oauth2.TwoFactorChallenge{TfaAPIToken: tfaAPIToken}}
}
