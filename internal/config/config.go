package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Output formats accepted in Format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var (
	ErrInvalidFormat  = errors.New("format must be table or json")
	ErrInvalidWorkers = errors.New("workers must be at least 1")
)

// Config holds application configuration. Only the playlist paths are
// mandatory for a run; Redis and PostgreSQL are enabled when their URLs are set.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	Workers     int
	Format      string
	RedisURL    string
	CacheTTL    time.Duration
	DatabaseURL string
	ServerPort  string
	LogLevel    string
	LogFile     string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		UserAgent:  "BretonTV/1.0",
		Timeout:    30 * time.Second,
		Workers:    4,
		Format:     FormatTable,
		CacheTTL:   10 * time.Minute,
		ServerPort: "8080",
		LogLevel:   "info",
	}
}

// Load builds config from environment variables, after loading .env.local
// and .env from the working directory and the executable's directory.
// Variables already set in the environment win over the files.
func Load() (*Config, error) {
	loadEnvFiles()
	c := Default()
	setString(&c.UserAgent, "BRETONTV_USER_AGENT")
	setString(&c.Format, "BRETONTV_FORMAT")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.ServerPort, "SERVER_PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFile, "LOG_FILE")
	if err := setDuration(&c.Timeout, "BRETONTV_TIMEOUT"); err != nil {
		return nil, err
	}
	if err := setDuration(&c.CacheTTL, "BRETONTV_CACHE_TTL"); err != nil {
		return nil, err
	}
	if s := os.Getenv("BRETONTV_WORKERS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("BRETONTV_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if isTrue(os.Getenv("DEBUG")) {
		c.LogLevel = "debug"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that have a fixed domain.
func (c *Config) Validate() error {
	if c.Format != FormatTable && c.Format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func isTrue(s string) bool {
	switch s {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
