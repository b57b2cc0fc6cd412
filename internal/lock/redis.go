package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/edificio/internal/logging"
)

var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every instance pointed at the same Redis.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	retry     time.Duration
}

func NewRedis(client *redis.Client, keyPrefix string, ttl time.Duration) *Redis {
	if keyPrefix == "" {
		keyPrefix = "edificio:lock:"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{client: client, keyPrefix: keyPrefix, ttl: ttl, retry: 50 * time.Millisecond}
}

// NewRedisFromURL parses a redis:// URL and checks the server is reachable.
func NewRedisFromURL(ctx context.Context, rawURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("NewRedisFromURL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewRedisFromURL: ping: %w", err)
	}
	return NewRedis(client, "", ttl), nil
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("Lock: %s: %w", key, errors.Join(ErrNotAcquired, ctx.Err()))
			}
			return nil, fmt.Errorf("Lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("Lock: %s: %w", key, errors.Join(ErrNotAcquired, ctx.Err()))
		case <-time.After(r.retry):
		}
	}

	log := logging.FromContext(ctx)
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n, err := releaseScript.Run(releaseCtx, r.client, []string{k}, token).Int64()
		switch {
		case err != nil:
			log.Warn("lock release failed", "key", key, "error", err)
		case n == 0:
			log.Warn("lock expired before release", "key", key, "ttl", r.ttl)
		}
	}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
