package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jacod97/taste-map/internal/platform/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Provider string
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
}

// New builds the configured provider client. Gemini is the default.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini, "":
		return NewGemini(ctx, log, cfg.Gemini)
	case ProviderOpenAI:
		return NewOpenAI(log, cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.Provider)
	}
}
