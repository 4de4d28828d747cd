package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmcleod/sessiond/storage"
)

// Save writes a JSON snapshot of the registry to the store. Only the
// in-memory snapshot step takes the registry lock; the store write
// happens outside it.
func (r *Registry) Save(ctx context.Context, store storage.BlobStore, path string) error {
	snap := r.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := store.Write(ctx, path, data); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	r.sink.RecordEvent("session.saved", map[string]string{"path": path})
	return nil
}

// Load replaces the registry contents with the snapshot stored at
// path. A missing snapshot is not an error and leaves the registry
// untouched. A snapshot that exists but cannot be decoded fails with
// ErrCorruptSnapshot, also leaving the registry untouched.
func (r *Registry) Load(ctx context.Context, store storage.BlobStore, path string) error {
	ok, err := store.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("checking snapshot: %w", err)
	}
	if !ok {
		r.sink.RecordEvent("session.load_missing", map[string]string{"path": path})
		return nil
	}

	data, err := store.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	var sessions map[string]Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", path, ErrCorruptSnapshot)
	}

	r.ReplaceAll(sessions)
	r.sink.RecordEvent("session.loaded", map[string]string{"path": path})
	return nil
}
