package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"masarif/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DataBackend  string // "sqlite" or "memory"
	SQLiteDBPath string

	// Sessions
	SessionTTL time.Duration

	// AMQP event bus (optional; empty URL disables publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets monthly report export (optional)
	GoogleSpreadsheetID string
	GoogleReportSheet   string

	// Dashboard
	TrendMonths       int
	DashboardCacheTTL time.Duration

	// Worker
	ReevalInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/masarif.db"),

		SessionTTL: getEnvDuration("SESSION_TTL", 30*24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "masarif"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleReportSheet:   getEnv("GOOGLE_REPORT_SHEET_NAME", "Reports"),

		TrendMonths:       getEnvInt("TREND_MONTHS", 6),
		DashboardCacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", 5*time.Minute),

		ReevalInterval: getEnvDuration("REEVAL_INTERVAL", 15*time.Minute),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
		// nothing to check
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite memory]", c.DataBackend))
	}

	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleReportSheet == "" {
		errs = append(errs, "Google report sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if c.TrendMonths < 1 || c.TrendMonths > 36 {
		errs = append(errs, fmt.Sprintf("invalid trend months %d: must be between 1 and 36", c.TrendMonths))
	}

	if c.DashboardCacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("invalid dashboard cache TTL %v: must not be negative", c.DashboardCacheTTL))
	}

	if c.ReevalInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid re-evaluation interval %v: must be at least 1 second", c.ReevalInterval))
	} else if c.ReevalInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid re-evaluation interval %v: must be at most 24 hours", c.ReevalInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// DefaultCurrency is fixed at load time; per-user currencies come from the
// saved budget and override it for display.
func (c *Config) DefaultCurrency() string {
	return core.DefaultCurrency
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
