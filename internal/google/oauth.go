package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultAccount is the account name used when none is given.
const DefaultAccount = "default"

// outOfBand is the redirect for installed apps that paste the code back.
const outOfBand = "urn:ietf:wg:oauth:2.0:oob"

// ErrNoToken is returned when no token has been stored for an account.
var ErrNoToken = errors.New("no Google OAuth token stored")

var accountNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Credentials are the OAuth client credentials of a Google Cloud desktop app.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// CredentialsFromEnv reads GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
func CredentialsFromEnv() Credentials {
	return Credentials{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}
}

// Validate reports missing credentials.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("google client id and secret are required; set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or [google] in the config file")
	}
	return nil
}

// OAuthConfig returns the OAuth2 configuration for read-only calendar access.
func OAuthConfig(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  outOfBand,
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}
}

// AuthURL returns the URL the user opens to grant access.
func AuthURL(conf *oauth2.Config, account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// TokenStore keeps one token file per account in a directory.
type TokenStore struct {
	dir string
}

// NewTokenStore stores tokens in dir. An empty dir means the default cache
// directory (see DefaultTokenDir).
func NewTokenStore(dir string) (*TokenStore, error) {
	if dir == "" {
		var err error
		dir, err = DefaultTokenDir()
		if err != nil {
			return nil, err
		}
	}
	return &TokenStore{dir: dir}, nil
}

// DefaultTokenDir returns <user cache dir>/macbridge.
func DefaultTokenDir() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(cache, "macbridge"), nil
}

func (s *TokenStore) path(account string) string {
	return filepath.Join(s.dir, "google-"+account+".token")
}

// Load reads the token of account.
func (s *TokenStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s; run `macbridge auth google --account %s`", ErrNoToken, account, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	return &token, nil
}

// Save writes the token of account with owner-only permissions.
func (s *TokenStore) Save(account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.path(account), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Has reports whether a token file exists for account.
func (s *TokenStore) Has(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.path(account))
	return err == nil
}

// Exchange trades an authorization code for a token and stores it.
func Exchange(ctx context.Context, conf *oauth2.Config, store *TokenStore, account, code string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return store.Save(account, token)
}

func validateAccountName(account string) error {
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: use letters, digits, '-' and '_'", account)
	}
	return nil
}
