package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string
	Debug           bool
	Version         string
	BotToken        string
	SupportChatID   int64
	AdminIDs        []int64
	SentryDSN       string
	MongoDBURI      string
	MongoDBDatabase string
	DefaultLanguage string

	// Pacing of the inbound event loop, events per second.
	EventsPerSecond int
	// Delay before retrying after a long-poll transport error.
	ErrorRetryDelay time.Duration

	// Broadcast job tuning.
	BroadcastMessagesPerSecond int
	BroadcastProgressEvery     int

	// Directory where /export drops generated workbooks.
	ExportDir string
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	supportChatIDStr := getEnv("SUPPORT_CHAT_ID", "")
	supportChatID, err := strconv.ParseInt(supportChatIDStr, 10, 64)
	if err != nil && supportChatIDStr != "" {
		return nil, fmt.Errorf("invalid SUPPORT_CHAT_ID: %w", err)
	}

	adminIDs, err := parseIDList(getEnv("ADMIN_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_IDS: %w", err)
	}

	eventsPerSecond, err := getEnvInt("EVENTS_PER_SECOND", 5)
	if err != nil {
		return nil, err
	}
	retrySeconds, err := getEnvInt("ERROR_RETRY_DELAY", 5)
	if err != nil {
		return nil, err
	}
	broadcastRate, err := getEnvInt("BROADCAST_MSGS_PER_SECOND", 3)
	if err != nil {
		return nil, err
	}
	progressEvery, err := getEnvInt("BROADCAST_PROGRESS_EVERY", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Debug:           debug,
		Version:         getEnv("VERSION", "dev"),
		BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		SupportChatID:   supportChatID,
		AdminIDs:        adminIDs,
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		MongoDBURI:      getEnv("MONGODB_URI", ""),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "ru"),

		EventsPerSecond: eventsPerSecond,
		ErrorRetryDelay: time.Duration(retrySeconds) * time.Second,

		BroadcastMessagesPerSecond: broadcastRate,
		BroadcastProgressEvery:     progressEvery,

		ExportDir: getEnv("EXPORT_DIR", os.TempDir()),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.SupportChatID == 0 {
		return nil, fmt.Errorf("SUPPORT_CHAT_ID is required")
	}
	if len(cfg.AdminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.MongoDBDatabase == "" {
		return nil, fmt.Errorf("MONGODB_DATABASE is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}
	if cfg.BroadcastProgressEvery <= 0 {
		return nil, fmt.Errorf("BROADCAST_PROGRESS_EVERY must be positive")
	}

	return cfg, nil
}

// parseIDList parses a comma-separated list of numeric user IDs.
func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
