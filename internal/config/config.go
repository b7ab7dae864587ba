package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	LogLevel    string
	Environment string
	CORSOrigins string

	InsightRatePerMinute int

	YouTubeAPIKey     string
	UploadsMaxResults int64

	FetchCacheTTL      time.Duration
	FetchCacheSize     int
	FetchRatePerSecond float64
	FetchTimeout       time.Duration
	FetchMaxRetries    int
	WorkerPoolSize     int
	AnalyzeTimeout     time.Duration

	// Warehouse batch job.
	WarehouseDriver     string
	WarehouseDSN        string
	BatchMinSubscribers int
	BatchCountry        string
	BatchOffset         int
	BatchLimit          int

	// EnvFileLoaded reports whether a .env file was read. Load runs before the
	// logger exists, so callers log it.
	EnvFileLoaded bool
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	envFileLoaded := godotenv.Load() == nil

	return &Config{
		EnvFileLoaded: envFileLoaded,

		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		InsightRatePerMinute: getEnvInt("INSIGHT_RATE_PER_MINUTE", 6),

		YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
		UploadsMaxResults: int64(getEnvInt("UPLOADS_MAX_RESULTS", 50)),

		FetchCacheTTL:      getEnvDuration("FETCH_CACHE_TTL", time.Hour),
		FetchCacheSize:     getEnvInt("FETCH_CACHE_SIZE", 100),
		FetchRatePerSecond: getEnvFloat("FETCH_RATE_PER_SECOND", 20),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchMaxRetries:    getEnvInt("FETCH_MAX_RETRIES", 3),
		WorkerPoolSize:     getEnvInt("WORKER_POOL_SIZE", 10),
		AnalyzeTimeout:     getEnvDuration("ANALYZE_TIMEOUT", 90*time.Second),

		WarehouseDriver:     getEnv("WAREHOUSE_DRIVER", "postgres"),
		WarehouseDSN:        getEnv("WAREHOUSE_DSN", ""),
		BatchMinSubscribers: getEnvInt("BATCH_MIN_SUBSCRIBERS", 5000),
		BatchCountry:        getEnv("BATCH_COUNTRY", "%United S%"),
		BatchOffset:         getEnvInt("BATCH_OFFSET", 100),
		BatchLimit:          getEnvInt("BATCH_LIMIT", 400),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
