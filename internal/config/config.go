package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultBuildings is the fixed five-building deployment the system ships
// with. Each building gets its own SQLite database file under DataDir.
var DefaultBuildings = []string{
	"property_1",
	"property_2",
	"property_3",
	"property_4",
	"property_5",
}

type Config struct {
	// Storage
	DataDir   string
	Buildings []string

	// AMQP (optional; empty URL disables event publication)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel string

	// Audit trail written by the worker binary. Empty means
	// DataDir/audit.log.
	AuditLog string
}

func Load() *Config {
	cfg := &Config{
		DataDir:   getEnv("DATA_DIR", "./data"),
		Buildings: getEnvList("BUILDINGS", DefaultBuildings),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "rentledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		AuditLog: getEnv("AUDIT_LOG", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty")
	} else if dir := filepath.Clean(c.DataDir); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create data directory '%s': %v", dir, err))
			}
		}
	}

	if len(c.Buildings) == 0 {
		errs = append(errs, "at least one building must be configured")
	}
	seen := make(map[string]bool, len(c.Buildings))
	for _, b := range c.Buildings {
		if strings.TrimSpace(b) == "" {
			errs = append(errs, "building names cannot be empty")
			continue
		}
		if strings.ContainsAny(b, `/\`) {
			errs = append(errs, fmt.Sprintf("invalid building name '%s': must not contain path separators", b))
		}
		if seen[b] {
			errs = append(errs, fmt.Sprintf("duplicate building name '%s'", b))
		}
		seen[b] = true
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

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// AuditLogPath returns the file the audit worker appends to.
func (c *Config) AuditLogPath() string {
	if c.AuditLog != "" {
		return c.AuditLog
	}
	return filepath.Join(c.DataDir, "audit.log")
}

// DatabasePath returns the SQLite file path for a building's store.
func (c *Config) DatabasePath(building string) string {
	return filepath.Join(c.DataDir, building+".db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
