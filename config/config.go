package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvDevelopment = "DEV"
	EnvProduction  = "PROD"
)

const DefaultFeedAPIURL = "https://api.twitter.com"

type AppConfig struct {
	FeedBearerToken string
	FeedAPIURL      string
	SMTPHost        string
	SMTPPort        string
	SMTPUser        string
	SMTPPassword    string
	SMTPFrom        string
	RedisURL        string
	ProxyURL        string
	Port            string
	AppEnv          string // EnvDevelopment or EnvProduction
	LogLevel        slog.Level
}

// Load reads configuration from the environment. It reports every missing
// required variable at once so a misconfigured deployment fails before any
// network call is made.
func Load() (AppConfig, error) {
	cfg := AppConfig{}

	var missing []string
	loadRequired := func(key string) string {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	cfg.AppEnv = os.Getenv("APP_ENV")
	cfg.FeedBearerToken = loadRequired("FEED_BEARER_TOKEN")
	cfg.SMTPHost = loadRequired("SMTP_HOST")
	cfg.SMTPPort = loadRequired("SMTP_PORT")
	cfg.SMTPUser = loadRequired("SMTP_USER")
	cfg.SMTPPassword = loadRequired("SMTP_PASSWORD")
	cfg.SMTPFrom = loadRequired("SMTP_FROM")
	cfg.RedisURL = loadRequired("REDIS_URL")

	cfg.FeedAPIURL = loadOptional("FEED_API_URL", DefaultFeedAPIURL)
	cfg.ProxyURL = os.Getenv("PROXY_URL")
	cfg.Port = loadOptional("PORT", "8080")

	if len(missing) > 0 {
		return AppConfig{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (c AppConfig) IsProduction() bool {
	return c.AppEnv == EnvProduction
}
