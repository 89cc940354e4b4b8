package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init parses the URL, connects, and verifies the server is reachable.
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	if password != "" {
		opts.Password = password
	}

	client = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

// SetClient replaces the client. Tests point it at miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the underlying client.
func GetClient() *redis.Client {
	return client
}

// Set stores a key with expiration.
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key.
func Get(ctx context.Context, key string) (string, error) {
	return client.Get(ctx, key).Result()
}

// Del removes a key.
func Del(ctx context.Context, key string) error {
	return client.Del(ctx, key).Err()
}

// SetNX sets a key only if it does not exist.
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return client.SetNX(ctx, key, value, expiration).Result()
}

// AcquireLock takes a best-effort mutex on key for at most ttl. The
// payout monitor uses it to keep two instances off the same account;
// the ttl frees locks held by a crashed instance.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return client.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseLock drops a lock taken with AcquireLock.
func ReleaseLock(ctx context.Context, key string) error {
	return client.Del(ctx, key).Err()
}
