package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var apiSuffixRe = regexp.MustCompile(`/api/(latest|v1)/?$`)

type Config struct {
	DatabaseURL    string
	KaitenAPIURL   string
	KaitenAPIToken string

	HTTPAddr            string
	SyncIntervalMinutes int // 0 disables the periodic incremental sync
	ShutdownTimeout     int // seconds
	LogMode             string

	PageSize         int
	PageDelayMS      int
	FetchChunkSize   int
	MaxRetries       int
	RetryBaseDelayMS int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	apiURL := os.Getenv("KAITEN_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("KAITEN_API_URL is required")
	}

	apiToken := os.Getenv("KAITEN_API_TOKEN")
	if apiToken == "" {
		return nil, fmt.Errorf("KAITEN_API_TOKEN is required")
	}

	return &Config{
		DatabaseURL:         dbURL,
		KaitenAPIURL:        NormalizeAPIURL(apiURL),
		KaitenAPIToken:      apiToken,
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		SyncIntervalMinutes: getEnvInt("SYNC_INTERVAL_MINUTES", 0),
		ShutdownTimeout:     getEnvInt("SHUTDOWN_TIMEOUT", 30),
		LogMode:             getEnv("LOG_MODE", "dev"),
		PageSize:            getEnvInt("PAGE_SIZE", 100),
		PageDelayMS:         getEnvInt("PAGE_DELAY_MS", 100),
		FetchChunkSize:      getEnvInt("FETCH_CHUNK_SIZE", 5),
		MaxRetries:          getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelayMS:    getEnvInt("RETRY_BASE_DELAY_MS", 500),
	}, nil
}

// NormalizeAPIURL strips a trailing slash and an accidentally included
// /api/latest or /api/v1 suffix. The client appends /api/latest itself.
func NormalizeAPIURL(raw string) string {
	u := strings.TrimRight(raw, "/")
	return apiSuffixRe.ReplaceAllString(u, "")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
