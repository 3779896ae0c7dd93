package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Jacod97/taste-map/internal/platform/logger"
)

// Redis is a fixed-window limiter shared by every instance that talks to the same Redis.
type Redis struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	cfg Config
	now func() time.Time
}

func NewRedis(log *logger.Logger, addr string, cfg Config) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisWithClient(log, rdb, cfg), nil
}

func NewRedisWithClient(log *logger.Logger, rdb goredis.UniversalClient, cfg Config) *Redis {
	return &Redis{
		log: log.With("service", "RedisRateLimiter"),
		rdb: rdb,
		cfg: cfg.normalized(),
		now: time.Now,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.cfg.Limit <= 0 {
		return true, nil
	}
	window := r.now().UnixNano() / int64(r.cfg.Window)
	rkey := fmt.Sprintf("%s:%s:%d", r.cfg.Prefix, key, window)

	var incr *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, rkey)
		p.Expire(ctx, rkey, r.cfg.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val() <= int64(r.cfg.Limit), nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
