package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func useTempTokenDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := tokenDir
	tokenDir = func() string { return dir }
	t.Cleanup(func() { tokenDir = prev })
	return dir
}

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		account string
		wantErr bool
	}{
		{"default", false},
		{"work-email", false},
		{"personal_email", false},
		{"account123", false},
		{"", true},
		{"my account", true},
		{"account@work", true},
		{"work/personal", true},
		{"../etc", true},
	}
	for _, tt := range tests {
		t.Run(tt.account, func(t *testing.T) {
			err := validateAccountName(tt.account)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	dir := useTempTokenDir(t)
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	assert.False(t, HasTokenForAccount("work"))
	_, err := TokenSourceForAccount(context.Background(), "work")
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, writeToken("work", &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	assert.True(t, HasTokenForAccount("work"))
	assert.False(t, HasTokenForAccount("bad account"))

	info, err := os.Stat(filepath.Join(dir, "google-work.token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := readToken("work")
	require.NoError(t, err)
	assert.Equal(t, "r", tok.RefreshToken)

	ts, err := TokenSourceForAccount(context.Background(), "work")
	require.NoError(t, err)
	assert.NotNil(t, ts)
}

func TestReadToken_Invalid(t *testing.T) {
	dir := useTempTokenDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "google-x.token"), []byte("not json"), 0o600))
	_, err := readToken("x")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "google-y.token"), []byte("{}"), 0o600))
	_, err = readToken("y")
	assert.ErrorContains(t, err, "empty token")
}

func TestOAuthConfig(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	_, err := OAuthConfig()
	assert.Error(t, err)

	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	conf, err := OAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultOAuthScopes, conf.Scopes)

	url, err := AuthURL("work")
	require.NoError(t, err)
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "state=work")
}

func TestStaticTokenProvider(t *testing.T) {
	var empty StaticTokenProvider
	assert.False(t, empty.HasTokenForAccount("x"))
	_, err := HTTPClientForAccount(context.Background(), empty, "x")
	assert.ErrorIs(t, err, ErrNoToken)

	p := StaticTokenProvider{Token: &oauth2.Token{AccessToken: "a"}}
	client, err := HTTPClientForAccount(context.Background(), p, "x")
	require.NoError(t, err)
	assert.NotNil(t, client)
}
