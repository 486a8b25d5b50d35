// Package file implements the credential store as a sealed file on disk.
//
// The whole credential document is encrypted with nacl/secretbox under a
// per-installation key kept next to it. Tokens grant full account access,
// so they are not written to disk in the clear.
package file

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/quizhub/quizctl/internal/storage"
)

const (
	credentialsFile = "credentials"
	keyFile         = "key"

	keySize   = 32
	nonceSize = 24
)

// Store is a file-backed implementation of the credential store
type Store struct {
	mu  sync.Mutex
	dir string
}

// New creates a file store rooted at dir, creating it if needed
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns the default credential directory under the user's home
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quizctl"
	}
	return filepath.Join(home, ".quizctl")
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// credentials is the on-disk document, sealed as a single unit
type credentials struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, err := s.load()
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, err := s.load()
	if err != nil {
		return "", err
	}
	return creds.RefreshToken, nil
}

func (s *Store) UserJSON(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, err := s.load()
	if err != nil {
		return nil, err
	}
	return creds.User, nil
}

func (s *Store) SaveCredentials(ctx context.Context, access, refresh string, userJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(&credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         userJSON,
	})
}

func (s *Store) SaveAccessToken(ctx context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, err := s.load()
	if err != nil {
		return err
	}
	creds.AccessToken = access
	return s.save(creds)
}

func (s *Store) SaveUser(ctx context.Context, userJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, err := s.load()
	if err != nil {
		return err
	}
	creds.User = userJSON
	return s.save(creds)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(filepath.Join(s.dir, credentialsFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// load reads and unseals the credential document; a missing file reads
// back as an empty document
func (s *Store) load() (*credentials, error) {
	sealed, err := os.ReadFile(filepath.Join(s.dir, credentialsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &credentials{}, nil
		}
		return nil, err
	}

	key, err := s.loadKey()
	if err != nil {
		return nil, err
	}

	if len(sealed) < nonceSize {
		return nil, errors.New("credential file truncated")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, key)
	if !ok {
		return nil, errors.New("failed to unseal credential file")
	}

	creds := &credentials{}
	if err := json.Unmarshal(plain, creds); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}
	return creds, nil
}

// save seals and writes the document via a temp file and rename, so a
// crash mid-write leaves the previous credentials intact
func (s *Store) save(creds *credentials) error {
	plain, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, key)

	path := filepath.Join(s.dir, credentialsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) loadKey() (*[keySize]byte, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, keyFile))
	if err != nil {
		return nil, err
	}
	if len(raw) != keySize {
		return nil, errors.New("credential key has wrong size")
	}
	key := new([keySize]byte)
	copy(key[:], raw)
	return key, nil
}

func (s *Store) loadOrCreateKey() (*[keySize]byte, error) {
	key, err := s.loadKey()
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key = new([keySize]byte)
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.dir, keyFile), key[:], 0600); err != nil {
		return nil, err
	}
	return key, nil
}
