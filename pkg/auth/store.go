package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Auth types.
const (
	AuthTypeDeviceCode = "deviceCode"
	AuthTypeSecret     = "secret"
)

// ErrNotLoggedIn is returned when no connection has been stored.
var ErrNotLoggedIn = errors.New("Log in to Microsoft 365 first")

// AccessToken is a cached token for one resource.
type AccessToken struct {
	Value     string    `json:"accessToken"`
	ExpiresOn time.Time `json:"expiresOn"`
}

// Connection is what the CLI remembers between invocations after login.
type Connection struct {
	AuthType     string                 `json:"authType"`
	AppID        string                 `json:"appId"`
	Tenant       string                 `json:"tenant"`
	ClientSecret string                 `json:"clientSecret,omitempty"`
	RefreshToken string                 `json:"refreshToken,omitempty"`
	AccessTokens map[string]AccessToken `json:"accessTokens"`

	Identity       string `json:"identityName,omitempty"`
	IdentityID     string `json:"identityId,omitempty"`
	IdentityTenant string `json:"identityTenantId,omitempty"`

	// SpoURL is the tenant's root SharePoint URL, discovered on first use.
	SpoURL string `json:"spoUrl,omitempty"`
}

// FileStore keeps the connection in <dir>/connection.json, readable only
// by the current user.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, "connection.json")
}

// Load reads the stored connection. It returns ErrNotLoggedIn when there is none.
func (s *FileStore) Load() (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read connection: %w", err)
	}

	var conn Connection
	if err := json.Unmarshal(data, &conn); err != nil {
		return nil, fmt.Errorf("failed to parse connection: %w", err)
	}
	if conn.AccessTokens == nil {
		conn.AccessTokens = make(map[string]AccessToken)
	}
	return &conn, nil
}

// Save writes conn, creating the directory if needed.
func (s *FileStore) Save(conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(conn, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write connection: %w", err)
	}
	return nil
}

// Clear removes the stored connection. Clearing an empty store is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	return nil
}
