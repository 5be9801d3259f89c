package config

import (
	"os"
	"time"

	"github.com/phuslu/log"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
)

// LLM holds everything the answer generator needs. It is passed explicitly
// to the generator constructor so tests can substitute their own values
// instead of reading ambient process state.
type LLM struct {
	Provider  string
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Config is the full application configuration, assembled from the
// environment once at startup.
type Config struct {
	Port        string
	DatabaseURL string
	MongoDB     string
	CORSOrigin  string
	LLM         LLM
}

// FromEnv reads configuration from the environment. Defaults keep the
// server runnable locally with nothing set except an LLM API key.
func FromEnv() Config {
	cfg := Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: getenv("DATABASE_URL", "sqlite://askk.db"),
		MongoDB:     getenv("MONGO_DB", "askk"),
		CORSOrigin:  getenv("CORS_ORIGIN", "*"),
		LLM: LLM{
			Provider:  getenv("LLM_PROVIDER", ProviderClaude),
			Model:     os.Getenv("LLM_MODEL"),
			Timeout:   getDuration("LLM_TIMEOUT", 60*time.Second),
			MaxTokens: 1024,
		},
	}

	switch cfg.LLM.Provider {
	case ProviderGemini:
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	default:
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}
