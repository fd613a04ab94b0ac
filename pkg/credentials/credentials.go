package credentials

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/William2207/uteshop/cli/pkg/config"
	"github.com/William2207/uteshop/cli/pkg/models"
	json "github.com/json-iterator/go"
)

// DefaultTTL is how long a persisted session survives without a token write.
const DefaultTTL = 7 * 24 * time.Hour

type Credentials struct {
	AccessToken     string       `json:"access_token"`
	RefreshToken    string       `json:"refresh_token,omitempty"`
	AccessExpiresAt time.Time    `json:"access_expires_at"`
	ExpiresAt       time.Time    `json:"expires_at"`
	User            *models.User `json:"user,omitempty"`
}

// IsExpired checks if the persisted session is past its expiry
func (c *Credentials) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are usable for a request
func (c *Credentials) IsValid() bool {
	return c.AccessToken != "" && c.User != nil && !c.IsExpired()
}

// AccessTokenExpired reports whether the access token's own expiry has
// passed. Tokens without a known expiry are treated as live.
func (c *Credentials) AccessTokenExpired() bool {
	return !c.AccessExpiresAt.IsZero() && time.Now().After(c.AccessExpiresAt)
}

// Store persists credentials to a single file. Writes replace the whole file
// so a reader never sees a token from one pair with the refresh token of
// another.
type Store struct {
	path string
	ttl  time.Duration
	mu   sync.Mutex
}

// NewStore creates a store writing to path. A non-positive ttl uses
// DefaultTTL.
func NewStore(path string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{path: path, ttl: ttl}
}

// Default returns the store at the configured credentials path.
func Default() *Store {
	return NewStore(config.GetCredentialsPath(), config.GetDuration("auth.session_ttl"))
}

// Path returns the file the store writes to.
func (s *Store) Path() string {
	return s.path
}

// Load loads credentials from disk. It returns nil when nothing is stored or
// the stored session has expired; expired files are removed.
func (s *Store) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	if creds.IsExpired() {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		return nil, nil
	}

	return &creds, nil
}

// Save writes credentials to disk, renewing the session expiry.
func (s *Store) Save(creds *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(creds)
}

func (s *Store) save(creds *Credentials) error {
	creds.ExpiresAt = time.Now().Add(s.ttl)

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}

// UpdateTokens swaps the token pair of the stored session in one write. An
// empty refresh token keeps the stored one. It is a no-op when nothing is
// stored.
func (s *Store) UpdateTokens(accessToken, refreshToken string, accessExpiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil || creds == nil {
		return err
	}

	creds.AccessToken = accessToken
	creds.AccessExpiresAt = accessExpiresAt
	if refreshToken != "" {
		creds.RefreshToken = refreshToken
	}
	return s.save(creds)
}

// UpdateUser replaces the cached user of the stored session. It is a no-op
// when nothing is stored, so it never brings back a deleted session.
func (s *Store) UpdateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil || creds == nil {
		return err
	}

	creds.User = user
	return s.save(creds)
}

// Delete deletes credentials from disk. A missing file is not an error.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
