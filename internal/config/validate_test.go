package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Token:          strings.Repeat("a", 50),
		AuditRetention: 720 * time.Hour,
		ReplyWindow:    3 * time.Minute,
		PageTimeout:    2 * time.Minute,
		HelpPageSize:   10,
		MetricsAddr:    ":2112",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Valid config should not produce error: %v", err)
	}
}

func TestConfig_Validate_Token(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid token", strings.Repeat("a", 50), false},
		{"too short", strings.Repeat("a", 49), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Token = tt.token

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_Durations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"reply window at max", func(c *Config) { c.ReplyWindow = 3 * time.Minute }, ""},
		{"reply window too long", func(c *Config) { c.ReplyWindow = 4 * time.Minute }, "REPLY_WINDOW must be at most"},
		{"reply window zero", func(c *Config) { c.ReplyWindow = 0 }, "REPLY_WINDOW must be at least"},
		{"page timeout too short", func(c *Config) { c.PageTimeout = time.Second }, "PAGINATION_TIMEOUT must be at least"},
		{"page timeout too long", func(c *Config) { c.PageTimeout = time.Hour }, "PAGINATION_TIMEOUT must be at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			assertContains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate_HelpPageSize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{1, false},
		{25, false},
		{0, true},
		{26, true},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.HelpPageSize = tt.size

		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("HelpPageSize=%d: error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
	}
}

func TestConfig_Validate_AuditRetention(t *testing.T) {
	cfg := validConfig()
	cfg.AuditRetention = time.Minute

	if err := cfg.Validate(); err != nil {
		t.Errorf("retention should be ignored without a database, got %v", err)
	}

	cfg.DatabaseURL = "postgres://localhost/db"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected retention error with a database configured")
	}
	assertContains(t, err.Error(), "AUDIT_RETENTION")
}

func TestConfig_Validate_Logging(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "verbose"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	assertContains(t, err.Error(), "LOG_LEVEL")
	assertContains(t, err.Error(), "LOG_FORMAT")
}

func TestConfig_Validate_ReportsAllErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"DISCORD_TOKEN", "REPLY_WINDOW", "PAGINATION_TIMEOUT", "HELP_PAGE_SIZE", "LOG_LEVEL"} {
		assertContains(t, err.Error(), field)
	}
}
