package storage

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// Storage is the small key-value interface every store in the portal
// persists through. Injecting it keeps the session and plan logic portable
// and lets tests substitute the in-memory implementation.
type Storage interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes key=value. A zero ttl means no expiry; a positive ttl makes
	// the entry session-scoped (pending-payment markers, resend cooldowns).
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
