package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Wildberries seller API
	WB WBConfig

	// Sync behavior
	Sync SyncConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Ops HTTP server
	APIPort string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// WBConfig holds Wildberries API configuration.
type WBConfig struct {
	Token            string
	AdvertBaseURL    string
	AnalyticsBaseURL string
	ContentBaseURL   string
}

// SyncConfig holds transformation and fetch tuning.
type SyncConfig struct {
	// Timezone defines the business-day boundary for the conversion-rate
	// snapshot (snapshot dates are computed in this zone, not in UTC).
	Timezone string

	// MinViewsThreshold drops articles whose summed daily views fall below it.
	MinViewsThreshold int

	// Fullstats fan-out: campaign IDs per request and delay between requests.
	FullstatsBatchSize int
	FullstatsDelay     time.Duration

	// ExcludedNMIDs are article IDs dropped from the products sync
	// (test articles, delisted goods).
	ExcludedNMIDs []int64
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		WB: WBConfig{
			Token:            getEnv("WB_API_TOKEN", ""),
			AdvertBaseURL:    getEnv("WB_ADV_API_BASE", "https://advert-api.wildberries.ru"),
			AnalyticsBaseURL: getEnv("WB_ANALYTICS_API_BASE", "https://seller-analytics-api.wildberries.ru"),
			ContentBaseURL:   getEnv("WB_CONTENT_API_BASE", "https://content-api.wildberries.ru"),
		},

		Sync: SyncConfig{
			Timezone:           getEnv("WB_TIMEZONE", "Europe/Moscow"),
			MinViewsThreshold:  getEnvAsInt("WB_MIN_VIEWS_THRESHOLD", 1),
			FullstatsBatchSize: getEnvAsInt("WB_FULLSTATS_BATCH_SIZE", 100),
			FullstatsDelay:     getEnvAsDuration("WB_FULLSTATS_DELAY", "65s"),
			ExcludedNMIDs:      getEnvAsInt64Slice("WB_EXCLUDED_NM_IDS"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		APIPort: getEnv("API_PORT", "8087"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Sync.MinViewsThreshold < 0 {
		return fmt.Errorf("WB_MIN_VIEWS_THRESHOLD must be >= 0")
	}

	if c.Sync.FullstatsBatchSize < 1 || c.Sync.FullstatsBatchSize > 100 {
		return fmt.Errorf("WB_FULLSTATS_BATCH_SIZE must be in 1..100 (upstream limit)")
	}

	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("WB_TIMEZONE is not a valid IANA zone: %w", err)
	}

	return nil
}

// Location returns the business-day timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		// validate() already rejected unknown zone names.
		return time.UTC
	}
	return loc
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsInt64Slice parses a comma-separated ID list; malformed entries are
// skipped.
func getEnvAsInt64Slice(key string) []int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var values []int64
	for _, part := range strings.Split(valueStr, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
