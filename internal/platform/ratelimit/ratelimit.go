package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits at most a fixed number of events per key per window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Limit  int
	Window time.Duration
	Prefix string
}

func (c Config) normalized() Config {
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Prefix == "" {
		c.Prefix = "tm:rl"
	}
	return c
}

// Noop admits everything.
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) { return true, nil }

// Memory is a per-process token-bucket limiter: one rate.Limiter per key, refilling
// Limit tokens per Window with a burst of Limit.
type Memory struct {
	cfg   Config
	every rate.Limit
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*memEntry
	lastSweep time.Time
}

type memEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewMemory(cfg Config) *Memory {
	cfg = cfg.normalized()
	m := &Memory{cfg: cfg, now: time.Now, limiters: map[string]*memEntry{}}
	if cfg.Limit > 0 {
		m.every = rate.Every(cfg.Window / time.Duration(cfg.Limit))
	}
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if m.cfg.Limit <= 0 {
		return true, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)
	e, ok := m.limiters[key]
	if !ok {
		e = &memEntry{limiter: rate.NewLimiter(m.every, m.cfg.Limit)}
		m.limiters[key] = e
	}
	e.lastAccess = now
	return e.limiter.AllowN(now, 1), nil
}

// sweep drops keys idle for a full window, whose buckets have refilled anyway.
// It runs at most once per window. Caller holds mu.
func (m *Memory) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.cfg.Window {
		return
	}
	m.lastSweep = now
	for k, e := range m.limiters {
		if now.Sub(e.lastAccess) >= m.cfg.Window {
			delete(m.limiters, k)
		}
	}
}

// size reports tracked keys.
func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}
