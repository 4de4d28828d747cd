// Package memory provides a thread-safe in-memory BlobStore. Suitable
// for testing, demos, and single-process use cases.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmcleod/sessiond/storage"
)

// Store is a thread-safe in-memory implementation of storage.BlobStore.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.BlobStore = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.data[path] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.data[path]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, storage.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.data[path]
	s.mu.RUnlock()
	return ok, nil
}
