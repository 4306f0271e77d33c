package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key holds no value.
var ErrMiss = errors.New("cache: miss")

// Cache defines the caching operations used by the order read path.
// Implementations must return ErrMiss (possibly wrapped) for absent keys.
type Cache interface {
	// Get retrieves a value from the cache by key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// SetIfNewer stores value under key unless the key has already seen a
	// higher version. It reports whether the value was stored.
	SetIfNewer(ctx context.Context, key string, value []byte, version int64, ttl time.Duration) (bool, error)

	// DeleteVersion removes key and records version so that later
	// SetIfNewer calls with an older version are refused.
	DeleteVersion(ctx context.Context, key string, version int64, ttl time.Duration) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
