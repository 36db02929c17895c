package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Signal transport
	SignalAPIBase   string
	SignalNumber    string
	SignalRecipient string
	HTTPTimeout     time.Duration

	// Ledger persistence
	StateBackend string
	StateFile    string
	SQLiteDBPath string

	// Loop scheduling
	PollInterval    time.Duration
	AccrualInterval time.Duration

	// AMQP sync pipeline (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		SignalAPIBase:   getEnv("SIGNAL_API_BASE", "http://localhost:8080"),
		SignalNumber:    getEnv("SIGNAL_NUMBER", ""),
		SignalRecipient: getEnv("RECIPIENT_NUMBER", ""),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		StateBackend: getEnv("STATE_BACKEND", "file"),
		StateFile:    getEnv("STATE_FILE", "budget_state.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budgetbot.db"),

		PollInterval:    getEnvDuration("POLL_INTERVAL", 2*time.Second),
		AccrualInterval: getEnvDuration("ACCRUAL_INTERVAL", time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgetbot"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_transactions"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SignalAPIBase == "" {
		errors = append(errors, "Signal API base URL cannot be empty")
	} else if parsed, err := url.Parse(c.SignalAPIBase); err != nil {
		errors = append(errors, fmt.Sprintf("invalid Signal API base URL '%s': %v", c.SignalAPIBase, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid Signal API base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	if c.SignalNumber == "" {
		errors = append(errors, "SIGNAL_NUMBER must be set to the registered number")
	}
	if c.SignalRecipient == "" {
		errors = append(errors, "RECIPIENT_NUMBER must be set to the reply recipient")
	}

	validBackends := []string{"file", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.StateBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid state backend '%s': must be one of %v", c.StateBackend, validBackends))
	}

	if c.StateBackend == "file" && c.StateFile == "" {
		errors = append(errors, "state file path cannot be empty when using file backend")
	}
	if c.StateBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.PollInterval < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid poll interval %v: must be at least 100ms", c.PollInterval))
	} else if c.PollInterval > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid poll interval %v: must be at most 1 minute", c.PollInterval))
	}

	if c.AccrualInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid accrual interval %v: must be at least 1 minute", c.AccrualInterval))
	} else if c.AccrualInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid accrual interval %v: must be at most 24 hours", c.AccrualInterval))
	}

	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
