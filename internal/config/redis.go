package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient builds a client from REDIS_URL (redis:// or rediss://).
// It returns nil when the URL is empty, malformed or the server does not
// answer a ping; callers then run without rate limiting and caching.
func NewRedisClient(rawURL string, log *zap.Logger) *redis.Client {
	if rawURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		log.Warn("redis url invalid, running without redis", zap.Error(err))
		return nil
	}
	client := redis.NewClient(opts)

	// Ping the server with a short timeout.  Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, running without redis", zap.String("addr", opts.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}
