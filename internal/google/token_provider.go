package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenProvider supplies tokens per account.
type TokenProvider interface {
	TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error)
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads tokens written by SaveTokenForAccount.
type FileTokenProvider struct{}

func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

func (p *FileTokenProvider) TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error) {
	return TokenSourceForAccount(ctx, account)
}

func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// StaticTokenProvider serves one fixed token for every account.
type StaticTokenProvider struct {
	Token *oauth2.Token
}

func (p StaticTokenProvider) TokenSource(context.Context, string) (oauth2.TokenSource, error) {
	if p.Token == nil {
		return nil, ErrNoToken
	}
	return oauth2.StaticTokenSource(p.Token), nil
}

func (p StaticTokenProvider) HasTokenForAccount(string) bool {
	return p.Token != nil
}

// HTTPClientForAccount builds an authenticated client for account.
func HTTPClientForAccount(ctx context.Context, provider TokenProvider, account string) (*http.Client, error) {
	ts, err := provider.TokenSource(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no usable Google token for account %s: %w; run `invitebooker auth --account %s`", account, err, account)
	}
	return HTTPClient(ctx, ts), nil
}
