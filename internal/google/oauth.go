package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoToken is returned when no token file exists for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

// DefaultAccount is used when no account is given.
const DefaultAccount = "default"

const oobRedirect = "urn:ietf:wg:oauth:2.0:oob"

var accountNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateAccountName(account string) error {
	if !accountNameRE.MatchString(account) {
		return fmt.Errorf("invalid account name %q: use letters, digits, '-' or '_'", account)
	}
	return nil
}

// tokenDir is a variable so tests can point it at a temp dir.
var tokenDir = func() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "invitebooker")
}

func getTokenFilePath(account string) string {
	return filepath.Join(tokenDir(), "google-"+account+".token")
}

// OAuthConfig returns the client configuration from the environment.
func OAuthConfig() (*oauth2.Config, error) {
	id, secret := os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET")
	if id == "" || secret == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}
	return &oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oobRedirect,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// AuthURL returns the consent URL the user visits to get an auth code.
func AuthURL(account string) (string, error) {
	conf, err := OAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// HasTokenForAccount reports whether a token file exists for account.
func HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// SaveTokenForAccount exchanges an auth code and stores the token.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	conf, err := OAuthConfig()
	if err != nil {
		return err
	}
	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeToken(account, tok)
}

func writeToken(account string, tok *oauth2.Token) error {
	path := getTokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func readToken(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(getTokenFilePath(account))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid token file for account %s: empty token", account)
	}
	return &tok, nil
}

// TokenSourceForAccount returns a refreshing token source for account.
func TokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	tok, err := readToken(account)
	if err != nil {
		return nil, err
	}
	conf, err := OAuthConfig()
	if err != nil {
		return nil, err
	}
	return conf.TokenSource(ctx, tok), nil
}

// HTTPClient returns an authenticated client over HTTP/1.1. Some Google
// endpoints reset long-lived HTTP/2 streams.
func HTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: &http.Transport{ForceAttemptHTTP2: false, Proxy: http.ProxyFromEnvironment},
	})
	return oauth2.NewClient(ctx, ts)
}
