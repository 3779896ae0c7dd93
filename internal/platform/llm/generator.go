package llm

import (
	"context"
	"errors"
)

var (
	ErrEmptyResponse = errors.New("llm: empty response")
	ErrCircuitOpen   = errors.New("llm: circuit open")
)

// Generator sends one complete prompt and returns the raw model text.
// It neither retries nor streams; failures are returned to the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Named is implemented by generators that know their provider and model, for metrics.
type Named interface {
	Provider() string
	Model() string
}

// Unconfigured fails every call with err. It stands in when no provider could be built,
// so the rest of the service still starts.
func Unconfigured(err error) Generator {
	return GeneratorFunc(func(context.Context, string) (string, error) {
		return "", err
	})
}
