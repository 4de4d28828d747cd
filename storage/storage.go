// Package storage provides the durable snapshot store abstraction used
// by the session registry's save/load operations.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no blob exists at the path.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a byte-oriented store keyed by a path-like identifier.
// Implementations must make Write a wholesale overwrite of any prior
// content at the same path.
type BlobStore interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
}
