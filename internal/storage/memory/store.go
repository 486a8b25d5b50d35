package memory

import (
	"context"
	"sync"

	"github.com/quizhub/quizctl/internal/storage"
)

// Store is an in-memory implementation of the credential store
type Store struct {
	mu sync.RWMutex

	access  string
	refresh string
	user    []byte
}

// New creates a new in-memory credential store
func New() *Store {
	return &Store{}
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, nil
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh, nil
}

func (s *Store) UserJSON(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	out := make([]byte, len(s.user))
	copy(out, s.user)
	return out, nil
}

func (s *Store) SaveCredentials(ctx context.Context, access, refresh string, userJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	s.user = append([]byte(nil), userJSON...)
	return nil
}

func (s *Store) SaveAccessToken(ctx context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	return nil
}

func (s *Store) SaveUser(ctx context.Context, userJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = append([]byte(nil), userJSON...)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	return nil
}
