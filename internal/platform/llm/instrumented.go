package llm

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jacod97/taste-map/internal/observability"
)

// Instrumented records a span and Prometheus series around every call.
type Instrumented struct {
	next    Generator
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func NewInstrumented(next Generator, metrics *observability.Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics, tracer: observability.Tracer()}
}

func (i *Instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	provider, model := providerOf(i.next), modelOf(i.next)
	ctx, span := i.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	defer span.End()

	start := time.Now()
	out, err := i.next.Generate(ctx, prompt)
	dur := time.Since(start)

	outcome := "ok"
	switch {
	case errors.Is(err, ErrCircuitOpen):
		outcome = "circuit_open"
	case err != nil:
		outcome = "error"
	}
	i.metrics.ObserveLLMRequest(provider, model, outcome, dur)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(out)))
	return out, nil
}

func (i *Instrumented) Provider() string { return providerOf(i.next) }
func (i *Instrumented) Model() string    { return modelOf(i.next) }

func providerOf(g Generator) string {
	if n, ok := g.(Named); ok {
		return n.Provider()
	}
	return "custom"
}

func modelOf(g Generator) string {
	if n, ok := g.(Named); ok {
		return n.Model()
	}
	return "unknown"
}
