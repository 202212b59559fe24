package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownBackend is returned by OpenStore for an unrecognized backend.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store is a durable string key/value store with expiry.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent
	// or expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Close releases the backend's connections.
	Close() error
}
