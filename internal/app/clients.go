package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Jacod97/taste-map/internal/observability"
	"github.com/Jacod97/taste-map/internal/platform/llm"
	"github.com/Jacod97/taste-map/internal/platform/logger"
	"github.com/Jacod97/taste-map/internal/platform/ratelimit"
)

type Clients struct {
	Generator        llm.Generator
	RecommendLimiter ratelimit.Limiter

	redis *ratelimit.Redis
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) Clients {
	log.Info("Wiring clients...")

	// Model: provider -> circuit breaker -> span/metrics
	var gen llm.Generator
	provider, err := llm.New(ctx, log, cfg.llmConfig())
	if err != nil {
		log.Error("LLM provider unavailable; recommendations will answer 503", "provider", cfg.LLMProvider, "error", err)
		gen = llm.Unconfigured(fmt.Errorf("llm not configured: %w", err))
	} else {
		gen = provider
	}
	gen = llm.NewBreaker(gen, log, llm.BreakerConfig{
		Name:             "llm-" + cfg.LLMProvider,
		FailureThreshold: uint32(cfg.LLMBreakerFailures),
		OpenTimeout:      cfg.LLMBreakerOpen,
	})
	gen = llm.NewInstrumented(gen, metrics)

	// Rate limiting: redis when configured, else in-process
	out := Clients{Generator: gen}
	limitCfg := ratelimit.Config{Limit: cfg.RecommendRatePerMinute, Window: time.Minute}
	switch {
	case cfg.RecommendRatePerMinute == 0:
		out.RecommendLimiter = ratelimit.Noop{}
	case cfg.RedisAddr != "":
		rl, err := ratelimit.NewRedis(log, cfg.RedisAddr, limitCfg)
		if err != nil {
			log.Warn("Redis rate limiter unavailable, using in-memory limiter", "error", err)
			out.RecommendLimiter = ratelimit.NewMemory(limitCfg)
		} else {
			out.redis = rl
			out.RecommendLimiter = rl
		}
	default:
		out.RecommendLimiter = ratelimit.NewMemory(limitCfg)
	}
	return out
}

func (c *Clients) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
		c.redis = nil
	}
}
