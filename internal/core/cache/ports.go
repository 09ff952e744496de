package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
// Callers match it with errors.Is.
var ErrKeyNotFound = errors.New("key not found")

// Cache defines the keyed storage operations interface following hexagonal
// architecture. This is a port that can be implemented by different providers
// (Redis, Memcached, etc.).
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Ping checks if the storage service is reachable.
	Ping(ctx context.Context) error

	// Close closes the connection.
	Close() error
}
