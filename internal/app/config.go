package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Jacod97/taste-map/internal/data/db"
	"github.com/Jacod97/taste-map/internal/platform/envutil"
	"github.com/Jacod97/taste-map/internal/platform/llm"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type Config struct {
	Port        string   `yaml:"port"`
	ServiceName string   `yaml:"service_name"`
	Environment string   `yaml:"environment"`
	CORSOrigins []string `yaml:"cors_origins"`

	DBDriver string `yaml:"db_driver"`
	// DatabaseURL is a sqlite path or a postgres URL.
	DatabaseURL      string `yaml:"database_url"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`

	JWTSecretKey string `yaml:"jwt_secret_key"`

	LLMProvider   string `yaml:"llm_provider"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`

	LLMBreakerFailures int           `yaml:"llm_breaker_failures"`
	LLMBreakerOpen     time.Duration `yaml:"llm_breaker_open"`

	RecommendTimeout         time.Duration `yaml:"recommend_timeout"`
	RecommendHistoryTurns    int           `yaml:"recommend_history_turns"`
	RecommendContextMaxChars int           `yaml:"recommend_context_max_chars"`
	RecommendRatePerMinute   int           `yaml:"recommend_rate_per_minute"`
	RedisAddr                string        `yaml:"redis_addr"`

	OtelEnabled     bool    `yaml:"otel_enabled"`
	OtelEndpoint    string  `yaml:"otel_endpoint"`
	OtelHeaders     string  `yaml:"otel_headers"`
	OtelInsecure    bool    `yaml:"otel_insecure"`
	OtelSampleRatio float64 `yaml:"otel_sample_ratio"`
}

// LoadConfig reads the environment, then overlays the YAML file named by CONFIG_FILE.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:        envutil.String("PORT", "8080", log),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "taste-map", log),
		Environment: envutil.String("APP_ENV", "development", log),
		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		DBDriver:         envutil.String("DB_DRIVER", db.DriverSQLite, log),
		DatabaseURL:      envutil.String("DATABASE_URL", "", log),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", nil),
		PostgresName:     envutil.String("POSTGRES_NAME", "taste_map", log),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "", nil),

		LLMProvider:   envutil.String("LLM_PROVIDER", llm.ProviderGemini, log),
		GeminiAPIKey:  envutil.String("GEMINI_API_KEY", "", nil),
		GeminiModel:   envutil.String("GEMINI_MODEL", llm.DefaultGeminiModel, log),
		OpenAIAPIKey:  envutil.String("OPENAI_API_KEY", "", nil),
		OpenAIBaseURL: envutil.String("OPENAI_BASE_URL", "", log),
		OpenAIModel:   envutil.String("OPENAI_MODEL", "", log),

		LLMBreakerFailures: envutil.Int("LLM_BREAKER_FAILURES", 5, log),
		LLMBreakerOpen:     envutil.Seconds("LLM_BREAKER_OPEN_SECONDS", 30*time.Second, log),

		RecommendTimeout:         envutil.Seconds("RECOMMEND_TIMEOUT_SECONDS", 60*time.Second, log),
		RecommendHistoryTurns:    envutil.Int("RECOMMEND_HISTORY_TURNS", 10, log),
		RecommendContextMaxChars: envutil.Int("RECOMMEND_CONTEXT_MAX_CHARS", 0, log),
		RecommendRatePerMinute:   envutil.Int("RECOMMEND_RATE_PER_MINUTE", 20, log),
		RedisAddr:                envutil.String("REDIS_ADDR", "", log),

		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", nil),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1.0, log),
	}

	if path := envutil.String("CONFIG_FILE", "", log); path != "" {
		if err := overlayYAML(&cfg, path); err != nil {
			return Config{}, err
		}
		log.Info("Config file applied", "path", path)
	}
	return cfg, cfg.validate()
}

func overlayYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.DBDriver) {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.RecommendTimeout <= 0 {
		return fmt.Errorf("recommend timeout must be positive")
	}
	if c.LLMBreakerFailures < 0 || c.RecommendRatePerMinute < 0 {
		return fmt.Errorf("negative limits are not allowed")
	}
	return nil
}

func (c Config) dbConfig() db.Config {
	return db.Config{
		Driver:           strings.ToLower(c.DBDriver),
		DSN:              c.DatabaseURL,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
	}
}

func (c Config) llmConfig() llm.Config {
	return llm.Config{
		Provider: c.LLMProvider,
		Gemini:   llm.GeminiConfig{APIKey: c.GeminiAPIKey, Model: c.GeminiModel},
		OpenAI: llm.OpenAIConfig{
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
			Model:   c.OpenAIModel,
		},
	}
}
