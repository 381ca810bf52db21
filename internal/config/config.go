// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogPretty bool

	DBDSN    string
	DBDriver string

	// AMQPURL empty means transition events stay on the in-process queue.
	AMQPURL    string
	OutboxPath string

	Timezone *time.Location

	DispatchParallelism int
	ScanRateLimit       int
	SessionTTL          time.Duration
}

// Load reads the given .env files (missing files are ignored, already set
// variables win) and then the MEDTRACK_* environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		HTTPAddr:   getString("MEDTRACK_HTTP_ADDR", ":8080"),
		LogLevel:   getString("MEDTRACK_LOG_LEVEL", "info"),
		DBDSN:      os.Getenv("MEDTRACK_DB_DSN"),
		DBDriver:   getString("MEDTRACK_DB_DRIVER", "pgx"),
		AMQPURL:    os.Getenv("MEDTRACK_AMQP_URL"),
		OutboxPath: getString("MEDTRACK_OUTBOX_PATH", "data/outbox"),
	}

	var err error
	if cfg.LogPretty, err = getBool("MEDTRACK_LOG_PRETTY", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.DispatchParallelism, err = getInt("MEDTRACK_DISPATCH_PARALLELISM", 4); err != nil {
		errs = append(errs, err)
	}
	if cfg.ScanRateLimit, err = getInt("MEDTRACK_SCAN_RATE_LIMIT", 30); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = getDuration("MEDTRACK_SESSION_TTL", 12*time.Hour); err != nil {
		errs = append(errs, err)
	}

	tz := getString("MEDTRACK_TIMEZONE", "America/Bogota")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		errs = append(errs, fmt.Errorf("MEDTRACK_TIMEZONE: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, errors.New("MEDTRACK_DB_DSN is required"))
	}
	if c.DBDriver != "pgx" && c.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("MEDTRACK_DB_DRIVER must be pgx or postgres, got %q", c.DBDriver))
	}
	if c.DispatchParallelism < 1 {
		errs = append(errs, errors.New("MEDTRACK_DISPATCH_PARALLELISM must be at least 1"))
	}
	if c.ScanRateLimit < 1 {
		errs = append(errs, errors.New("MEDTRACK_SCAN_RATE_LIMIT must be at least 1"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("MEDTRACK_SESSION_TTL must be positive"))
	}
	if c.OutboxPath == "" {
		errs = append(errs, errors.New("MEDTRACK_OUTBOX_PATH is required"))
	}
	return errors.Join(errs...)
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
