package blobstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, KeyMembers); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key: err = %v, want ErrNotFound", err)
	}

	blob := []byte(`[{"id":"m1"}]`)
	if err := s.Put(ctx, KeyMembers, blob); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, KeyMembers)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("got %q, want %q", got, blob)
	}

	// Callers must not be able to mutate the stored blob.
	got[0] = 'X'
	again, _ := s.Get(ctx, KeyMembers)
	if string(again) != string(blob) {
		t.Fatalf("stored blob mutated through returned slice")
	}
}

func TestMemoryStoreDeleteAndReset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Put(ctx, KeyDues, []byte(`[]`))
	_ = s.Put(ctx, KeyTheme, []byte(`dark`))

	if err := s.Delete(ctx, KeyDues); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, KeyDues); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted key still present: %v", err)
	}
	if err := s.Delete(ctx, "no_such_key"); err != nil {
		t.Fatalf("deleting a missing key should not error: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := s.Get(ctx, KeyTheme); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reset left key behind: %v", err)
	}
}
