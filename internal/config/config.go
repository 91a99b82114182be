// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all settings parsed from environment variables.
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// Item resistance database
	ItemDBPath string `env:"ITEM_DB_PATH" envDefault:"./data/items.db"`

	// Optional override of the embedded bonus catalog
	CatalogPath string `env:"CATALOG_PATH"`

	// Warcraft Logs API
	WCLAPIURL       string        `env:"WCL_API_URL" envDefault:"https://www.warcraftlogs.com/api/v2/client"`
	WCLTokenURL     string        `env:"WCL_TOKEN_URL" envDefault:"https://www.warcraftlogs.com/oauth/token"`
	WCLClientID     string        `env:"WCL_CLIENT_ID"`
	WCLClientSecret string        `env:"WCL_CLIENT_SECRET"`
	WCLTimeout      time.Duration `env:"WCL_TIMEOUT" envDefault:"30s"`

	ReportCacheSize int `env:"REPORT_CACHE_SIZE" envDefault:"64"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.ReportCacheSize <= 0 {
		return fmt.Errorf("REPORT_CACHE_SIZE must be positive, got %d", c.ReportCacheSize)
	}
	if (c.WCLClientID == "") != (c.WCLClientSecret == "") {
		return errors.New("WCL_CLIENT_ID and WCL_CLIENT_SECRET must be set together")
	}
	return nil
}

// HasClientCredentials reports whether the server can obtain its own API token.
// Without them every request must carry the caller's bearer token.
func (c *Config) HasClientCredentials() bool {
	return c.WCLClientID != "" && c.WCLClientSecret != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
