package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token           string
	DiscordGuildID  string
	DatabaseURL     string
	AuditRetention  time.Duration
	ReplyWindow     time.Duration
	PageTimeout     time.Duration
	HelpPageSize    int
	MetricsAddr     string
	LogLevel        string
	LogFormat       string
	CleanupCommands bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	token := readSecret("discord_token")
	if token == "" {
		token = os.Getenv("DISCORD_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set (via secret or env var)")
	}

	dbURL := readSecret("database_url")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	cfg := &Config{
		Token:           token,
		DiscordGuildID:  envString("DISCORD_GUILD_ID", ""),
		DatabaseURL:     dbURL,
		AuditRetention:  envDuration("AUDIT_RETENTION", 30*24*time.Hour),
		ReplyWindow:     envDuration("REPLY_WINDOW", 3*time.Minute),
		PageTimeout:     envDuration("PAGINATION_TIMEOUT", 2*time.Minute),
		HelpPageSize:    envInt("HELP_PAGE_SIZE", 10),
		MetricsAddr:     envString("METRICS_ADDR", ":2112"),
		LogLevel:        strings.ToLower(envString("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(envString("LOG_FORMAT", "text")),
		CleanupCommands: envBool("CLEANUP_COMMANDS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AuditEnabled reports whether a database is configured for the audit sink.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}

var secretsDir = "/run/secrets/"

func readSecret(name string) string {
	data, err := os.ReadFile(secretsDir + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
