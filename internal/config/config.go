package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	Port         string
	LogEnv       string
	TablesPath   string

	// Solver
	SolveTimeout time.Duration

	// Cache
	RedisAddr string
	CacheTTL  time.Duration

	// HTTP
	RateLimitPerMinute int
	TrustProxy         bool

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramWebhookSecret  string
	TelegramAllowedUserIDs []int64
	// TelegramAllowAll admits every user when the allow list is empty.
	// Without it an empty list admits nobody.
	TelegramAllowAll bool
	// AdminTelegramID zero means nobody may read /metrics.
	AdminTelegramID int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH environment variable not set")
	}

	solveTimeout, err := durationEnv("SOLVE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := durationEnv("CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	rateLimit := 30
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		rateLimit, err = strconv.Atoi(v)
		if err != nil || rateLimit <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %q", v)
		}
	}

	// Telegram Config (optional, the bot is only started when a token is set)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	if telegramBotToken != "" && telegramWebhookURL == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}

	// Telegram echoes this in X-Telegram-Bot-Api-Secret-Token on every update.
	telegramWebhookSecret := os.Getenv("TELEGRAM_WEBHOOK_SECRET")
	if telegramBotToken != "" && telegramWebhookSecret == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_SECRET environment variable not set")
	}

	allowAll, err := boolEnv("TELEGRAM_ALLOW_ALL")
	if err != nil {
		return nil, err
	}

	trustProxy, err := boolEnv("TRUST_PROXY")
	if err != nil {
		return nil, err
	}

	allowedIDs, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		adminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return &Config{
		DatabasePath:           databasePath,
		Port:                   getEnv("PORT", "8080"),
		LogEnv:                 getEnv("LOG_ENV", "development"),
		TablesPath:             os.Getenv("TABLES_PATH"),
		SolveTimeout:           solveTimeout,
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		CacheTTL:               cacheTTL,
		RateLimitPerMinute:     rateLimit,
		TrustProxy:             trustProxy,
		TelegramBotToken:       telegramBotToken,
		TelegramWebhookURL:     telegramWebhookURL,
		TelegramWebhookSecret:  telegramWebhookSecret,
		TelegramAllowedUserIDs: allowedIDs,
		TelegramAllowAll:       allowAll,
		AdminTelegramID:        adminID,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func boolEnv(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
