package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all broker configuration. Values come from environment
// variables, optionally seeded from a .env file in the working directory.
type Config struct {
	HTTPAddr string
	StateDir string
	DBDSN    string

	Basiq   BasiqConfig
	Logging LoggingConfig

	CallbackSecret      string
	TransactionsEnabled bool
	TransactionsLimit   int
}

// BasiqConfig describes connectivity to the data provider.
type BasiqConfig struct {
	BaseURL       string
	ClientID      string
	ClientSecret  string
	UserID        string
	InstitutionID string
	ConsentURL    string
	Timeout       time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

// Load reads configuration from the environment, applying defaults. Missing
// provider credentials are not an error here; fetch operations fail with a
// config error only when they actually need them.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr: getEnv("BROKER_HTTP_ADDR", ":8080"),
		StateDir: getEnv("BROKER_STATE_DIR", "."),
		DBDSN:    getEnv("BROKER_DB_DSN", "file:broker.db?cache=shared&mode=rwc"),
		Basiq: BasiqConfig{
			BaseURL:       getEnv("BASIQ_API_URL", "https://au-api.basiq.io"),
			ClientID:      os.Getenv("BASIQ_CLIENT_ID"),
			ClientSecret:  os.Getenv("BASIQ_CLIENT_SECRET"),
			UserID:        os.Getenv("BASIQ_USER_ID"),
			InstitutionID: os.Getenv("BASIQ_INSTITUTION_ID"),
			ConsentURL:    getEnv("BASIQ_CONSENT_URL", "https://consent.basiq.io/home"),
			Timeout:       getDuration("BROKER_PROVIDER_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		CallbackSecret:      getEnv("BROKER_CALLBACK_SECRET", ""),
		TransactionsEnabled: getBool("BROKER_ENABLE_TRANSACTIONS", false),
		TransactionsLimit:   getInt("BROKER_TRANSACTIONS_LIMIT", 50),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
