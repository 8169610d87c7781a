package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared by every server instance.
// Counters expire with their window.
type RedisLimiter struct {
	client          *redis.Client
	prefix          string
	userMaxRequests int
	ipMaxRequests   int
	window          time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, c RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewRedisLimiter(client *redis.Client, userMaxRequests, ipMaxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:          client,
		prefix:          "gamejournal:ratelimit:",
		userMaxRequests: userMaxRequests,
		ipMaxRequests:   ipMaxRequests,
		window:          window,
	}
}

func (l *RedisLimiter) AllowUser(ctx context.Context, userID uint) (bool, error) {
	return l.allow(ctx, fmt.Sprintf("%suser:%d", l.prefix, userID), l.userMaxRequests)
}

func (l *RedisLimiter) AllowIP(ctx context.Context, ip string) (bool, error) {
	return l.allow(ctx, l.prefix+"ip:"+ip, l.ipMaxRequests)
}

func (l *RedisLimiter) allow(ctx context.Context, key string, max int) (bool, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		// Only the first hit of a window sets the TTL
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(max), nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
