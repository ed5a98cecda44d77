// Package credentials persists the session token and the user record the
// server handed out, so a guest keeps the same identity across launches.
package credentials

import (
	"context"
	"errors"
	"sync"

	"example.com/dictation/internal/api"
)

var ErrNotFound = errors.New("credentials: not found")

type Credentials struct {
	Token string   `json:"token"`
	User  api.User `json:"user"`
}

type Store interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

type MemoryStore struct {
	mu  sync.Mutex
	c   Credentials
	set bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Credentials{}, ErrNotFound
	}
	return s.c, nil
}

func (s *MemoryStore) Save(ctx context.Context, c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c, s.set = c, true
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c, s.set = Credentials{}, false
	return nil
}
