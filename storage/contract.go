package storage

import (
	"context"
	"errors"
	"testing"
)

// RunBlobStoreContract exercises the behavior every BlobStore
// implementation must share. Backend test packages call it with a
// fresh, empty store.
func RunBlobStoreContract(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("ReadMissing", func(t *testing.T) {
		_, err := s.Read(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ExistsMissing", func(t *testing.T) {
		ok, err := s.Exists(ctx, "missing")
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if ok {
			t.Fatal("expected missing path to not exist")
		}
	})

	t.Run("WriteReadExists", func(t *testing.T) {
		if err := s.Write(ctx, "blob", []byte("hello")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		ok, err := s.Exists(ctx, "blob")
		if err != nil || !ok {
			t.Fatalf("Exists after write: ok=%v err=%v", ok, err)
		}
		data, err := s.Read(ctx, "blob")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if string(data) != "hello" {
			t.Fatalf("got %q, want %q", data, "hello")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.Write(ctx, "blob", []byte("v1")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := s.Write(ctx, "blob", []byte("v2")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		data, err := s.Read(ctx, "blob")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if string(data) != "v2" {
			t.Fatalf("got %q, want wholesale overwrite %q", data, "v2")
		}
	})

	t.Run("EmptyBlob", func(t *testing.T) {
		if err := s.Write(ctx, "empty", nil); err != nil {
			t.Fatalf("Write: %v", err)
		}
		ok, err := s.Exists(ctx, "empty")
		if err != nil || !ok {
			t.Fatalf("Exists after empty write: ok=%v err=%v", ok, err)
		}
		data, err := s.Read(ctx, "empty")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if len(data) != 0 {
			t.Fatalf("got %d bytes, want 0", len(data))
		}
	})
}
