package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	Env           string
	AuthID        string        // MoneyUnify API auth id
	Currency      string        // Settlement currency, e.g. "ZMW"
	Sandbox       bool          // Sandbox vs production MoneyUnify host
	WebhookURL    string        // Merchant notification endpoint, optional
	WebhookSecret string        // Signs outgoing webhooks
	SweepInterval time.Duration // How often the pending-payment sweep runs
	SweepBatch    int           // Oldest-first records per sweep cycle
}

// LoadConfig reads .env file and returns a Config struct
func LoadConfig() *Config {
	// The .env file might not exist in production, which is fine
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	return &Config{
		Port:          getEnv("PORT", "3000"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Env:           getEnv("ENV", "development"),
		AuthID:        getEnv("MONEYUNIFY_AUTH_ID", ""),
		Currency:      getEnv("CURRENCY", "ZMW"),
		Sandbox:       getEnvBool("SANDBOX", true),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		SweepInterval: time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 300)) * time.Second,
		SweepBatch:    getEnvInt("SWEEP_BATCH_SIZE", 20),
	}
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Invalid boolean env value, using fallback", "key", key, "value", value)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer env value, using fallback", "key", key, "value", value)
		return fallback
	}
	return parsed
}
