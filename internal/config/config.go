/*
Package config loads the service settings from the environment.
A .env file in the working directory is loaded automatically.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds all runtime settings for the tips service.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int

	// ModelProvider selects the model client: "openai" or "gemini".
	ModelProvider string

	// OpenAIKey enables the model path when non-empty. Timeout, max tokens
	// and temperature apply to either provider.
	OpenAIKey         string
	OpenAIModel       string
	OpenAIBaseURL     string
	OpenAITimeout     time.Duration
	OpenAIMaxTokens   int
	OpenAITemperature float32

	GeminiKey   string
	GeminiModel string

	// CacheTTL is the age at which a cached result is considered stale.
	CacheTTL time.Duration
	// CacheSize caps the number of cached results (LRU).
	CacheSize int

	AllowOrigins []string

	LogLevel  string
	LogPretty bool
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:8080",
	"http://localhost:5000",
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvInt("PORT", 5001),
		ModelProvider:     strings.ToLower(getEnv("MODEL_PROVIDER", ProviderOpenAI)),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAITimeout:     getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		OpenAIMaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 300),
		OpenAITemperature: float32(getEnvFloat("OPENAI_TEMPERATURE", 0.7)),
		GeminiKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		CacheTTL:          getEnvDuration("TIPS_CACHE_TTL", 5*time.Minute),
		CacheSize:         getEnvInt("TIPS_CACHE_SIZE", 1024),
		AllowOrigins:      getEnvList("CORS_ALLOW_ORIGINS", defaultOrigins),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPretty:         getEnvBool("LOG_PRETTY", false),
	}

	return cfg, cfg.Validate()
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ModelEnabled reports whether the selected provider has a credential.
// Without one the engine always serves fallback tips.
func (c *Config) ModelEnabled() bool {
	switch c.ModelProvider {
	case ProviderGemini:
		return c.GeminiKey != ""
	default:
		return c.OpenAIKey != ""
	}
}

func (c *Config) Validate() error {
	if c.ModelProvider != ProviderOpenAI && c.ModelProvider != ProviderGemini {
		return fmt.Errorf("MODEL_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.ModelProvider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be 1-65535, got %d", c.Port)
	}
	if c.OpenAITimeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive, got %s", c.OpenAITimeout)
	}
	if c.OpenAIMaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive, got %d", c.OpenAIMaxTokens)
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be 0-2, got %f", c.OpenAITemperature)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("TIPS_CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("TIPS_CACHE_SIZE must be positive, got %d", c.CacheSize)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
