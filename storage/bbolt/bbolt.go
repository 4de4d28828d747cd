// Package bbolt provides a BBolt-backed BlobStore. All snapshots live
// in a single bucket keyed by their path identifier.
package bbolt

import (
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/jmcleod/sessiond/storage"
)

var bucketName = []byte("snapshots")

// Store implements storage.BlobStore backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ storage.BlobStore = (*Store)(nil)

// NewStore returns a BlobStore backed by the given BBolt database.
func NewStore(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// NewStoreFromFile opens a BBolt database at the given path and returns
// a new Store.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db), nil
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put([]byte(path), data)
	})
}

func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return fmt.Errorf("%s: %w", path, storage.ErrNotFound)
		}
		// Get cannot tell an empty value from a missing key, so seek
		// for the key itself.
		k, v := b.Cursor().Seek([]byte(path))
		if k == nil || !bytes.Equal(k, []byte(path)) {
			return fmt.Errorf("%s: %w", path, storage.ErrNotFound)
		}
		out = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		k, _ := b.Cursor().Seek([]byte(path))
		ok = k != nil && bytes.Equal(k, []byte(path))
		return nil
	})
	return ok, err
}
