package blobstore

import (
	"context"
	"errors"
)

// Fixed keys for the persisted collections. The names mirror the original
// browser-storage layout so exported blobs stay readable.
const (
	KeyMembers  = "finance_students"
	KeyDues     = "finance_fees"
	KeyPayments = "finance_payments"
	KeyExpenses = "finance_expenses"
	KeyTheme    = "theme"
)

// ErrNotFound is returned when a key has no blob.
var ErrNotFound = errors.New("blob not found")

// Store is the key-value blob port the domain store persists through. Each
// collection is one JSON-encoded blob under a fixed key.
type Store interface {
	// Get returns the blob for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the blob for key, replacing any previous value.
	Put(ctx context.Context, key string, blob []byte) error

	// Delete removes the blob for key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Reset removes every blob.
	Reset(ctx context.Context) error
}
