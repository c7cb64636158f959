package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultContextBudget is the character cap for assembled context. The
// authoritative value drifted across revisions of the original service, so
// it is a config knob rather than behavior.
const DefaultContextBudget = 12000

// ErrMissingAPIKey is reported before any remote call is attempted.
var ErrMissingAPIKey = errors.New("LLM_API_KEY is not set")

type Config struct {
	GitHubToken string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	ContextBudget int

	SurrealURL  string
	SurrealNS   string
	SurrealDB   string
	SurrealUser string
	SurrealPass string

	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		GitHubToken: os.Getenv("GITHUB_TOKEN"),

		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   os.Getenv("LLM_MODEL"),

		SurrealURL:  os.Getenv("SURREAL_URL"),
		SurrealNS:   os.Getenv("SURREAL_NS"),
		SurrealDB:   os.Getenv("SURREAL_DB"),
		SurrealUser: os.Getenv("SURREAL_USER"),
		SurrealPass: os.Getenv("SURREAL_PASS"),

		EmbeddingBaseURL: os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:   os.Getenv("EMBEDDING_MODEL"),
	}

	// The SDK appends /rpc automatically
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/rpc")
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/")

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if cfg.EmbeddingBaseURL == "" {
		cfg.EmbeddingBaseURL = cfg.LLMBaseURL
	}
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = cfg.LLMAPIKey
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}

	cfg.ContextBudget = DefaultContextBudget
	if v := os.Getenv("CONTEXT_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ContextBudget = n
		}
	}

	return cfg
}

// Validate checks that the required model credential is present. The GitHub
// token stays optional: without it calls are unauthenticated and rate-limited
// to 60/hour instead of 5,000/hour.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// HistoryEnabled reports whether summaries should be recorded in SurrealDB.
func (c *Config) HistoryEnabled() bool {
	return c.SurrealURL != ""
}
