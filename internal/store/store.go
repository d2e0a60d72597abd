// Package store persists the signed-in user between dashboard restarts.
// It is the Go analogue of the browser's localStorage "user" key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

// UserKey is the single storage key holding the JSON-serialized user
const UserKey = "user"

// SessionStore is durable storage for the current user identity
type SessionStore interface {
	// Load returns the stored user, or nil when none is stored
	Load(ctx context.Context) (*model.UserProfile, error)
	Save(ctx context.Context, user *model.UserProfile) error
	Clear(ctx context.Context) error
}

// ── File store ─────────────────────────────────────────

// FileStore keeps the user in <dir>/user.json
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStore{filePath: filepath.Join(dir, UserKey+".json")}, nil
}

func (s *FileStore) Load(_ context.Context) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading stored user: %w", err)
	}

	var user model.UserProfile
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt entry is treated like an empty one
		log.Warn().Err(err).Str("path", s.filePath).Msg("Discarding unreadable stored user")
		return nil, nil
	}
	return &user, nil
}

func (s *FileStore) Save(_ context.Context, user *model.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write-then-rename so a crash never leaves half a file behind
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing stored user: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replacing stored user: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stored user: %w", err)
	}
	return nil
}

// ── Memory store ───────────────────────────────────────

// MemoryStore is a process-local store, used in tests and when no
// durable location is configured
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, nil
	}
	var user model.UserProfile
	if err := json.Unmarshal(s.data, &user); err != nil {
		return nil, fmt.Errorf("decoding stored user: %w", err)
	}
	return &user, nil
}

func (s *MemoryStore) Save(_ context.Context, user *model.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}
