package oauth2

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/sessions"
)

// TokenResponse is the OAuth payload issued by POST /sessions and POST /tokens.
type TokenResponse struct {
	// UserID is the SmartRent account identifier.
	UserID int `json:"user_id"`

	// AccessToken is sent as "Authorization: Bearer <access_token>" on device requests.
	AccessToken string `json:"access_token"`

	// RefreshToken is sent as the Authorization-X-Refresh header to /tokens.
	RefreshToken string `json:"refresh_token"`

	// Expires is the access token expiry in seconds since the epoch.
	Expires int64 `json:"expires"`
}

// Session converts the payload into a session record.
func (t TokenResponse) Session() sessions.Session {
	return sessions.Session{
		UserID:       t.UserID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expires:      sessions.ExpiryFromUnix(t.Expires),
	}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeSessionResponse decodes a {"data": {...}} body, choosing the variant by
// which fields are present in the payload.
func DecodeSessionResponse(body []byte) (SessionResult, error) {
	fields, data, err := decodeData(body)
	if err != nil {
		return SessionResult{}, err
	}

	if _, ok := fields["access_token"]; ok {
		token, err := decodeToken(data)
		if err != nil {
			return SessionResult{}, err
		}
		return SessionResult{Kind: TokenResult, Token: &token}, nil
	}

	if _, ok := fields["tfa_api_token"]; ok {
		var challenge TwoFactorChallenge
		if err := json.Unmarshal(data, &challenge); err != nil {
			return SessionResult{}, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
		}
		if challenge.TfaAPIToken == "" {
			return SessionResult{}, fmt.Errorf("%w: empty tfa_api_token", errors.ErrMalformedResponse)
		}
		return SessionResult{Kind: TwoFactorResult, Challenge: &challenge}, nil
	}

	return SessionResult{}, fmt.Errorf("%w: neither access_token nor tfa_api_token present", errors.ErrMalformedResponse)
}

// DecodeTokenResponse decodes a body that must carry the OAuth variant.
func DecodeTokenResponse(body []byte) (TokenResponse, error) {
	fields, data, err := decodeData(body)
	if err != nil {
		return TokenResponse{}, err
	}
	if _, ok := fields["access_token"]; !ok {
		return TokenResponse{}, fmt.Errorf("%w: access_token not present", errors.ErrMalformedResponse)
	}
	return decodeToken(data)
}

func decodeData(body []byte) (map[string]json.RawMessage, json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil, fmt.Errorf("%w: data missing", errors.ErrMalformedResponse)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		return nil, nil, fmt.Errorf("%w: data is not an object: %v", errors.ErrMalformedResponse, err)
	}
	return fields, env.Data, nil
}

func decodeToken(data json.RawMessage) (TokenResponse, error) {
	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return TokenResponse{}, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}
	switch {
	case token.AccessToken == "":
		return TokenResponse{}, fmt.Errorf("%w: empty access_token", errors.ErrMalformedResponse)
	case token.RefreshToken == "":
		return TokenResponse{}, fmt.Errorf("%w: empty refresh_token", errors.ErrMalformedResponse)
	case token.Expires <= 0:
		return TokenResponse{}, fmt.Errorf("%w: missing expires", errors.ErrMalformedResponse)
	}
	return token, nil
}
