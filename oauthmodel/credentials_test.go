package oauthmodel_test

import (
	"testing"

	"github.com/jrsteele09/smartrent-bridge/internal/errors"
	"github.com/jrsteele09/smartrent-bridge/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestLoginCredentialsValidate(t *testing.T) {
	tests := []struct {
		name      string
		creds     oauthmodel.LoginCredentials
		wantField string
	}{
		{"complete", oauthmodel.LoginCredentials{Email: "a@b.com", Password: "secret"}, ""},
		{"no email", oauthmodel.LoginCredentials{Password: "secret"}, oauthmodel.FieldEmail},
		{"blank email", oauthmodel.LoginCredentials{Email: "  ", Password: "secret"}, oauthmodel.FieldEmail},
		{"no password", oauthmodel.LoginCredentials{Email: "a@b.com"}, oauthmodel.FieldPassword},
		{"nothing", oauthmodel.LoginCredentials{}, oauthmodel.FieldEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errors.ErrMissingCredentials)
			var missing *errors.MissingCredentialsError
			require.True(t, errors.As(err, &missing))
			require.Equal(t, tt.wantField, missing.Field)
		})
	}
}

func TestLoginCredentialsForm(t *testing.T) {
	form := oauthmodel.LoginCredentials{Email: " a@b.com ", Password: "p w"}.Form()

	require.Equal(t, "a@b.com", form.Get("username"))
	require.Equal(t, "p w", form.Get("password"))
	require.Equal(t, "password=p+w&username=a%40b.com", form.Encode())
}

func TestTwoFactorCredentials(t *testing.T) {
	creds := oauthmodel.TwoFactorCredentials{TfaAPIToken: "T", Code: "123456"}
	require.NoError(t, creds.Validate())
	require.Equal(t, "T", creds.Form().Get("tfa_api_token"))
	require.Equal(t, "123456", creds.Form().Get("token"))

	require.ErrorIs(t, oauthmodel.TwoFactorCredentials{TfaAPIToken: "T"}.Validate(), errors.ErrMissingTwoFactorCode)
	require.ErrorIs(t, oauthmodel.TwoFactorCredentials{Code: "1"}.Validate(), errors.ErrMalformedResponse)
}
