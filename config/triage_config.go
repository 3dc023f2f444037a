package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// OpenAI
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration

	// Routing thresholds
	ResolveThreshold float64
	ViabilityFloor   float64

	// Extraction
	FallbackLanguage string

	// Review notifications
	NotifyMaxAttempts   int
	NotifyBaseDelay     time.Duration
	NotifyMaxDelay      time.Duration
	NotifyWebhookURL    string
	NotifyStreamEnabled bool

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "triage"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// OpenAI
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1024),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.0),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 20)) * time.Second,

		// Routing
		ResolveThreshold: getEnvFloat("RESOLVE_THRESHOLD", 0.75),
		ViabilityFloor:   getEnvFloat("VIABILITY_FLOOR", 0.25),

		// Extraction
		FallbackLanguage: getEnv("FALLBACK_LANGUAGE", "no"),

		// Review notifications
		NotifyMaxAttempts:   getEnvInt("NOTIFY_MAX_ATTEMPTS", 4),
		NotifyBaseDelay:     time.Duration(getEnvInt("NOTIFY_BASE_DELAY_MS", 500)) * time.Millisecond,
		NotifyMaxDelay:      time.Duration(getEnvInt("NOTIFY_MAX_DELAY_MS", 10000)) * time.Millisecond,
		NotifyWebhookURL:    getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyStreamEnabled: getEnvBool("NOTIFY_STREAM_ENABLED", true),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
