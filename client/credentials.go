package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vendora/vendora/internal/domain"
)

// Credentials is the persisted auth slice: the signed-in user plus the
// current token pair. Nothing else survives a restart.
type Credentials struct {
	User         *domain.UserInfo `json:"user,omitempty"`
	Token        string           `json:"token,omitempty"`
	RefreshToken string           `json:"refreshToken,omitempty"`
}

// CredentialStore holds the current credential pair. It performs no
// validation; it is a passive holder the transport reads from.
type CredentialStore interface {
	Get() Credentials
	Set(creds Credentials) error
	Clear() error
}

// MemStore is an in-memory credential store.
type MemStore struct {
	mu    sync.RWMutex
	creds Credentials
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *MemStore) Set(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}

// FileStore persists credentials as JSON so a process restart restores the
// last known pair. Writes go through a temp file rename.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	creds Credentials
}

// NewFileStore loads existing credentials from path if present. A missing
// file is an empty store, not an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &s.creds); err != nil {
		// Corrupt state is treated as logged out.
		s.creds = Credentials{}
	}

	return s, nil
}

// DefaultPath returns the conventional credentials location under the user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vendora", "credentials.json"), nil
}

func (s *FileStore) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *FileStore) Set(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return s.persist()
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return s.persist()
}

func (s *FileStore) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(s.creds)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
