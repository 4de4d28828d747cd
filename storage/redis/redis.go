// Package redis provides a Redis-backed BlobStore for deployments that
// want snapshots to survive a host loss.
package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/jmcleod/sessiond/storage"
)

const defaultPrefix = "sessiond:snapshot:"

// Store implements storage.BlobStore on a Redis server.
type Store struct {
	client *backend.Client
	prefix string
}

var _ storage.BlobStore = (*Store)(nil)

type Option func(*Store)

// WithPrefix overrides the key prefix for snapshot blobs.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Store with its own Redis client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(path string) string {
	return s.prefix + path
}

func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	if err := s.client.Set(ctx, s.key(path), data, 0).Err(); err != nil {
		return fmt.Errorf("writing %s to redis: %w", path, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(path)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%s: %w", path, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s from redis: %w", path, err)
	}
	return data, nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(path)).Result()
	if err != nil {
		return false, fmt.Errorf("checking %s in redis: %w", path, err)
	}
	return n > 0, nil
}
