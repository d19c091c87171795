package oauth2_test

import (
	"testing"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/oauth2"
	"github.com/stretchr/testify/require"
)

func TestDecodeSessionResponseOAuth(t *testing.T) {
	body := `{"data":{"user_id":1,"access_token":"AT","refresh_token":"RT","expires":2000000000}}`

	result, err := oauth2.DecodeSessionResponse([]byte(body))
	require.NoError(t, err)
	require.Equal(t, oauth2.TokenResult, result.Kind)
	require.Nil(t, result.Challenge)
	require.Equal(t, oauth2.TokenResponse{UserID: 1, AccessToken: "AT", RefreshToken: "RT", Expires: 2000000000}, *result.Token)

	s := result.Token.Session()
	require.Equal(t, int64(2000000000*1000-100), s.Expires.UnixMilli())
}

func TestDecodeSessionResponseTwoFactor(t *testing.T) {
	result, err := oauth2.DecodeSessionResponse([]byte(`{"data":{"tfa_api_token":"T"}}`))
	require.NoError(t, err)
	require.Equal(t, oauth2.TwoFactorResult, result.Kind)
	require.Nil(t, result.Token)
	require.Equal(t, "T", result.Challenge.TfaAPIToken)
}

func TestDecodeSessionResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"no data", `{}`},
		{"null data", `{"data":null}`},
		{"data not object", `{"data":[1,2]}`},
		{"unknown shape", `{"data":{"message":"hello"}}`},
		{"empty tfa token", `{"data":{"tfa_api_token":""}}`},
		{"oauth without refresh token", `{"data":{"user_id":1,"access_token":"AT","expires":2000000000}}`},
		{"oauth without expiry", `{"data":{"user_id":1,"access_token":"AT","refresh_token":"RT"}}`},
		{"oauth wrong types", `{"data":{"user_id":"one","access_token":"AT","refresh_token":"RT","expires":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := oauth2.DecodeSessionResponse([]byte(tt.body))
			require.ErrorIs(t, err, errors.ErrMalformedResponse)
		})
	}
}

func TestDecodeTokenResponseRejectsChallenge(t *testing.T) {
	_, err := oauth2.DecodeTokenResponse([]byte(`{"data":{"tfa_api_token":"T"}}`))
	require.ErrorIs(t, err, errors.ErrMalformedResponse)

	token, err := oauth2.DecodeTokenResponse([]byte(`{"data":{"user_id":3,"access_token":"AT2","refresh_token":"RT2","expires":1900000000}}`))
	require.NoError(t, err)
	require.Equal(t, "RT2", token.RefreshToken)
}

func TestResultKindString(t *testing.T) {
	require.Equal(t, "oauth", oauth2.TokenResult.String())
	require.Equal(t, "two_factor", oauth2.TwoFactorResult.String())
	require.Equal(t, "unknown", oauth2.UnknownResult.String())
}
