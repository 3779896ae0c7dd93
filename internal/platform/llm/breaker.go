package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type BreakerConfig struct {
	Name string
	// FailureThreshold consecutive failures open the circuit. 0 disables the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a half-open probe.
	OpenTimeout time.Duration
}

// Breaker fails fast with ErrCircuitOpen while the wrapped generator keeps failing.
type Breaker struct {
	next Generator
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreaker wraps next; with a zero threshold it returns next unchanged.
func NewBreaker(next Generator, log *logger.Logger, cfg BreakerConfig) Generator {
	if cfg.FailureThreshold == 0 {
		return next
	}
	name := cfg.Name
	if name == "" {
		name = "llm"
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.Warn("LLM circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
			}
		},
		// Caller cancellation says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *Breaker) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.cb.Execute(func() (string, error) {
		return b.next.Generate(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrCircuitOpen
	}
	return out, err
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) Provider() string { return providerOf(b.next) }
func (b *Breaker) Model() string    { return modelOf(b.next) }
