package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the fraud core.
type Config struct {
	Port string

	// Storage. An empty DBPath keeps rules and alerts in memory only.
	DBPath string

	// Rule file. When set the YAML file replaces the built-in seed rules;
	// RulesWatch hot-swaps the set on file change (memory store only).
	RulesPath  string
	RulesWatch bool

	// HTTP middleware
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration

	// Demo alert history on an empty store
	SeedAlerts bool
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the service still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8086"),
		DBPath:         getEnv("DB_PATH", ""),
		RulesPath:      getEnv("RULES_PATH", ""),
		RulesWatch:     getEnv("RULES_WATCH", "false") == "true",
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 50),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		SeedAlerts:     getEnv("SEED_ALERTS", "true") == "true",
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
