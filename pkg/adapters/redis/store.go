package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// Store implements ports.CredentialStore using Redis. Useful when several
// editor processes on one workstation should share the resolved credential.
type Store struct {
	client *backend.Client
	key    string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets an expiration for the stored credential.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithKey overrides the Redis key holding the credential.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		key:    "tendril:credential",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Get retrieves the credential from Redis.
func (s *Store) Get(ctx context.Context) (domain.Credential, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == backend.Nil {
			return "", domain.ErrCredentialNotFound
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	if val == "" {
		return "", domain.ErrCredentialNotFound
	}

	return domain.Credential(val), nil
}

// Set persists the credential to Redis.
func (s *Store) Set(ctx context.Context, credential domain.Credential) error {
	if err := s.client.Set(ctx, s.key, string(credential), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Clear removes the credential. Deleting a missing key is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
