package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements the Cache interface using Redis.
// All keys are stored under the adapter's namespace, e.g. "lepatage:order:LP-1".
type RedisAdapter struct {
	client    *redis.Client
	namespace string
}

// NewRedisAdapter creates a new Redis cache adapter.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisAdapter(redisURL, namespace string) (*RedisAdapter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &RedisAdapter{
		client:    redis.NewClient(opts),
		namespace: namespace,
	}, nil
}

func (r *RedisAdapter) key(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

// Get retrieves a value from Redis by key.
func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// Set stores a value in Redis with the specified TTL.
func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a value from Redis by key. Deleting an absent key is not an error.
func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// KEYS[1] value, KEYS[2] version; ARGV[1] value, ARGV[2] version, ARGV[3] ttl in ms.
var setIfNewerScript = redis.NewScript(`
local seen = redis.call('GET', KEYS[2])
if seen and tonumber(seen) > tonumber(ARGV[2]) then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// KEYS[1] value, KEYS[2] version; ARGV[1] version, ARGV[2] ttl in ms.
var deleteVersionScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
local seen = redis.call('GET', KEYS[2])
if seen and tonumber(seen) >= tonumber(ARGV[1]) then
	return 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
else
	redis.call('SET', KEYS[2], ARGV[1])
end
return 1
`)

func (r *RedisAdapter) versionKey(key string) string {
	return r.key(key) + ":version"
}

// SetIfNewer stores value and its version atomically, refusing versions
// older than the one already recorded for key.
func (r *RedisAdapter) SetIfNewer(ctx context.Context, key string, value []byte, version int64, ttl time.Duration) (bool, error) {
	stored, err := setIfNewerScript.Run(ctx, r.client,
		[]string{r.key(key), r.versionKey(key)},
		value, version, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return stored == 1, nil
}

// DeleteVersion removes key and raises its recorded version.
func (r *RedisAdapter) DeleteVersion(ctx context.Context, key string, version int64, ttl time.Duration) error {
	if err := deleteVersionScript.Run(ctx, r.client,
		[]string{r.key(key), r.versionKey(key)},
		version, ttl.Milliseconds(),
	).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
