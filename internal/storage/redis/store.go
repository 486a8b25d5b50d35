// Package redis implements the credential store on Redis, for headless
// deployments (bots, kiosks) where several workers share one session.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizhub/quizctl/internal/storage"
)

// Store is a Redis-backed implementation of the credential store
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis credential store
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, accessTokenKey(s.cfg.Namespace))
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, refreshTokenKey(s.cfg.Namespace))
}

func (s *Store) UserJSON(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, userKey(s.cfg.Namespace)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// SaveCredentials writes the tokens before the user record, so a failure
// partway through never leaves a user record without a token
func (s *Store) SaveCredentials(ctx context.Context, access, refresh string, userJSON []byte) error {
	if err := s.client.Set(ctx, accessTokenKey(s.cfg.Namespace), access, 0).Err(); err != nil {
		return err
	}

	refreshKey := refreshTokenKey(s.cfg.Namespace)
	if refresh == "" {
		if err := s.client.Del(ctx, refreshKey).Err(); err != nil {
			return err
		}
	} else if err := s.client.Set(ctx, refreshKey, refresh, 0).Err(); err != nil {
		return err
	}

	if userJSON == nil {
		return s.client.Del(ctx, userKey(s.cfg.Namespace)).Err()
	}
	return s.client.Set(ctx, userKey(s.cfg.Namespace), userJSON, 0).Err()
}

func (s *Store) SaveAccessToken(ctx context.Context, access string) error {
	return s.client.Set(ctx, accessTokenKey(s.cfg.Namespace), access, 0).Err()
}

func (s *Store) SaveUser(ctx context.Context, userJSON []byte) error {
	return s.client.Set(ctx, userKey(s.cfg.Namespace), userJSON, 0).Err()
}

func (s *Store) Clear(ctx context.Context) error {
	return s.client.Del(ctx,
		accessTokenKey(s.cfg.Namespace),
		refreshTokenKey(s.cfg.Namespace),
		userKey(s.cfg.Namespace),
	).Err()
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}
