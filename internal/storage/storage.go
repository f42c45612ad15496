package storage

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound signals that the requested key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Store is the key-value contract the paste engine runs against. All
// implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value unconditionally with no expiry.
	Set(ctx context.Context, key string, value []byte) error

	// SetWithExpiry writes value and instructs the backend to evict the
	// key once ttl has elapsed.
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// CompareAndSet atomically replaces the value at key when the current
	// bytes equal expected, preserving any backend-level expiry. It
	// reports whether the swap happened; a missing key is a failed swap,
	// not an error.
	CompareAndSet(ctx context.Context, key string, expected, replacement []byte) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
