package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: try the cache first, fall back to
// the fill function on a miss and populate the cache with the result.
// dest must be a pointer. A nil Redis client degrades to calling fill directly.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fill func() error) error {
	if client == nil {
		return fill()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
			observability.CacheResults.WithLabelValues("hit").Inc()
			return nil
		}
		// Corrupt entry: drop it and fall through to the fill path.
		client.Del(ctx, key)
	} else if err != redis.Nil {
		// Redis unavailable mid-flight: serve from the source of truth.
		return fill()
	}

	observability.CacheResults.WithLabelValues("miss").Inc()

	if err := fill(); err != nil {
		return err
	}

	if encoded, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}
