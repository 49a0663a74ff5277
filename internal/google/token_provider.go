package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider hands out OAuth tokens for named accounts.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider serves tokens from a TokenStore and refreshes expired ones
// through the OAuth config, writing refreshed tokens back to the store.
type FileTokenProvider struct {
	store *TokenStore
	conf  *oauth2.Config
}

// NewFileTokenProvider creates a file-based token provider.
func NewFileTokenProvider(store *TokenStore, conf *oauth2.Config) *FileTokenProvider {
	return &FileTokenProvider{store: store, conf: conf}
}

// GetTokenForAccount returns a valid token for account.
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	stored, err := p.store.Load(account)
	if err != nil {
		return nil, err
	}
	if stored.Valid() || p.conf == nil {
		return stored, nil
	}

	token, err := p.conf.TokenSource(ctx, stored).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for account %s: %w", account, err)
	}
	if token.AccessToken != stored.AccessToken {
		if err := p.store.Save(account, token); err != nil {
			return nil, err
		}
	}
	return token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return p.store.Has(account)
}
