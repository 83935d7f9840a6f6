package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tracker/internal/core"
	applog "tracker/internal/log"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (optional, empty URL disables refresh notifications)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// People
	ParticipantA string
	ParticipantB string
	// Admins maps chat user IDs to the owner they act as
	Admins map[int64]core.Owner

	// Chat sessions
	SessionTTL      time.Duration
	SessionCapacity int

	LogLevel string

	adminsErr error
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tracker.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "view_refresh"),

		ParticipantA: getEnv("PARTICIPANT_A", "artem"),
		ParticipantB: getEnv("PARTICIPANT_B", "nikita"),

		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionCapacity: getEnvInt("SESSION_CAPACITY", 256),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	cfg.Admins, cfg.adminsErr = ParseAdmins(getEnv("ADMINS", ""))

	return cfg
}

// Participants returns the two configured participants.
func (c *Config) Participants() core.Participants {
	return core.Participants{A: core.Owner(c.ParticipantA), B: core.Owner(c.ParticipantB)}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	return applog.ParseLevel(c.LogLevel)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
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

	participants := c.Participants()
	if err := participants.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid participants '%s' and '%s': must be two distinct names other than '%s'", c.ParticipantA, c.ParticipantB, core.Common))
	}

	if c.adminsErr != nil {
		errors = append(errors, c.adminsErr.Error())
	}
	for id, owner := range c.Admins {
		if !participants.Has(owner) {
			errors = append(errors, fmt.Sprintf("admin %d maps to unknown participant '%s'", id, owner))
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 24 hours", c.SessionTTL))
	}

	if c.SessionCapacity < 1 {
		errors = append(errors, fmt.Sprintf("invalid session capacity %d: must be at least 1", c.SessionCapacity))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseAdmins reads a comma separated list of id:owner pairs.
func ParseAdmins(value string) (map[int64]core.Owner, error) {
	admins := map[int64]core.Owner{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idStr, owner, ok := strings.Cut(pair, ":")
		if !ok {
			return admins, fmt.Errorf("invalid admin entry '%s': expected id:owner", pair)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return admins, fmt.Errorf("invalid admin id '%s': must be a number", idStr)
		}
		admins[id] = core.Owner(strings.TrimSpace(owner))
	}
	return admins, nil
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
