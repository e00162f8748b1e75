package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Validation constants define acceptable bounds for configuration values
const (
	// Token validation
	minTokenLength = 50 // Discord tokens are typically 50+ characters

	// Discord rejects the first response after 3 minutes
	minReplyWindow = 1 * time.Second
	maxReplyWindow = 3 * time.Minute

	// Component tokens stay valid for 15 minutes
	minPageTimeout = 10 * time.Second
	maxPageTimeout = 15 * time.Minute

	minHelpPageSize = 1
	maxHelpPageSize = 25 // Discord embed field limit

	minAuditRetention = 1 * time.Hour
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks if the configuration values are valid and within acceptable ranges.
// It returns all validation errors at once using errors.Join.
//
// Validated fields:
//   - Token: Must be at least 50 characters (Discord token format)
//   - ReplyWindow: Must be between 1s and 3m
//   - PageTimeout: Must be between 10s and 15m
//   - HelpPageSize: Must be between 1 and 25
//   - AuditRetention: Must be at least 1h when the audit sink is enabled
//   - LogLevel and LogFormat: Must be known values
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateToken(); err != nil {
		errs = append(errs, err)
	}

	if err := validateRange("REPLY_WINDOW", c.ReplyWindow, minReplyWindow, maxReplyWindow); err != nil {
		errs = append(errs, err)
	}

	if err := validateRange("PAGINATION_TIMEOUT", c.PageTimeout, minPageTimeout, maxPageTimeout); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateHelpPageSize(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateAuditRetention(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateLogging(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %w", errors.Join(errs...))
	}

	return nil
}

// validateToken ensures the Discord token is present and has valid length
func (c *Config) validateToken() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required but not set")
	}

	if len(c.Token) < minTokenLength {
		return fmt.Errorf(
			"DISCORD_TOKEN appears invalid (too short: %d chars, expected %d+)",
			len(c.Token), minTokenLength,
		)
	}

	return nil
}

func validateRange(field string, value, lower, upper time.Duration) error {
	if value < lower {
		return fmt.Errorf("%s must be at least %v, got %v", field, lower, value)
	}

	if value > upper {
		return fmt.Errorf("%s must be at most %v, got %v", field, upper, value)
	}

	return nil
}

func (c *Config) validateHelpPageSize() error {
	if c.HelpPageSize < minHelpPageSize || c.HelpPageSize > maxHelpPageSize {
		return fmt.Errorf(
			"HELP_PAGE_SIZE must be between %d and %d, got %d",
			minHelpPageSize, maxHelpPageSize, c.HelpPageSize,
		)
	}

	return nil
}

// validateAuditRetention is skipped when no database is configured
func (c *Config) validateAuditRetention() error {
	if !c.AuditEnabled() {
		return nil
	}

	if c.AuditRetention < minAuditRetention {
		return fmt.Errorf(
			"AUDIT_RETENTION must be at least %v, got %v",
			minAuditRetention, c.AuditRetention,
		)
	}

	return nil
}

func (c *Config) validateLogging() error {
	var errs []error

	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of %v, got %q", logLevels, c.LogLevel))
	}

	if !slices.Contains(logFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of %v, got %q", logFormats, c.LogFormat))
	}

	return errors.Join(errs...)
}
