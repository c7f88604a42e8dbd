package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	UserAgent   string `yaml:"user_agent"`
	Timeout     string `yaml:"timeout"`
	Workers     int    `yaml:"workers"`
	Format      string `yaml:"format"`
	RedisURL    string `yaml:"redis_url"`
	CacheTTL    string `yaml:"cache_ttl"`
	DatabaseURL string `yaml:"database_url"`
	ServerPort  string `yaml:"server_port"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// LoadFromFile loads config from a YAML file. Missing keys keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c := Default()
	for dst, v := range map[*string]string{
		&c.UserAgent:   f.UserAgent,
		&c.Format:      f.Format,
		&c.RedisURL:    f.RedisURL,
		&c.DatabaseURL: f.DatabaseURL,
		&c.ServerPort:  f.ServerPort,
		&c.LogLevel:    f.LogLevel,
		&c.LogFile:     f.LogFile,
	} {
		if v != "" {
			*dst = v
		}
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if f.CacheTTL != "" {
		d, err := time.ParseDuration(f.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
