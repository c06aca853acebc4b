package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rmsbilling/pkg/models"
)

// TokenStore persists the bearer token pair between console invocations,
// the CLI analogue of the browser console's persistent client storage.
type TokenStore interface {
	// Token returns the current access token, or "" when logged out.
	Token() (string, error)

	// Save persists a token pair issued by login or register.
	Save(tokens models.AuthTokens) error

	// Clear removes any stored tokens.
	Clear() error
}

// FileTokenStore stores tokens as a JSON file with owner-only permissions.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore creates a store backed by the given file path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Token returns the stored access token. A missing file means logged out,
// not an error.
func (s *FileTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("tokenstore: failed to read %s: %w", s.path, err)
	}

	var tokens models.AuthTokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return "", fmt.Errorf("tokenstore: corrupt token file %s: %w", s.path, err)
	}
	return tokens.AccessToken, nil
}

// Save writes the token pair, creating the parent directory if needed.
func (s *FileTokenStore) Save(tokens models.AuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("tokenstore: failed to create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenstore: failed to encode tokens: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("tokenstore: failed to write %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the token file. Clearing an already-empty store succeeds.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tokenstore: failed to remove %s: %w", s.path, err)
	}
	return nil
}

// MemoryTokenStore keeps tokens in memory only, for tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens models.AuthTokens
}

// Token returns the stored access token.
func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.AccessToken, nil
}

// Save stores the token pair.
func (s *MemoryTokenStore) Save(tokens models.AuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	return nil
}

// Clear drops the stored tokens.
func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = models.AuthTokens{}
	return nil
}
