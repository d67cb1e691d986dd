// Package config loads the YAML configuration for the board CLI and
// any service embedding the aggregation core.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TablesConfig points at the curated station tables. Either the path
// pair or the URL pair is used; paths win when both are set.
type TablesConfig struct {
	StationsPath string `yaml:"stationsPath"`
	RoutesPath   string `yaml:"routesPath"`
	StationsURL  string `yaml:"stationsURL" validate:"omitempty,url"`
	RoutesURL    string `yaml:"routesURL" validate:"omitempty,url"`
}

// StorageConfig selects the station table backend.
type StorageConfig struct {
	// memory, sqlite or postgres. Defaults to memory.
	Driver string `yaml:"driver" validate:"omitempty,oneof=memory sqlite postgres"`

	// Directory for the sqlite database file. Empty means in-memory
	// sqlite.
	Directory string `yaml:"directory"`

	// Connection string for postgres.
	ConnStr string `yaml:"connStr"`
}

// SubwayConfig configures the subway GTFS Realtime adapter.
type SubwayConfig struct {
	// API key sent as the x-api-key header. Usually supplied via
	// the MTA_API_KEY environment variable instead.
	APIKey string `yaml:"apiKey"`

	// Overrides the published per-line-group feed URLs.
	FeedURLs map[string]string `yaml:"feedURLs" validate:"omitempty,dive,url"`

	TimeoutMS int `yaml:"timeoutMS" validate:"gte=0"`
}

// PATHConfig configures the PATH GTFS Realtime adapter.
type PATHConfig struct {
	FeedURL   string `yaml:"feedURL" validate:"omitempty,url"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// TransitAPIConfig configures the JSON departure-board adapter.
type TransitAPIConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"omitempty,url"`
	APIKey    string `yaml:"apiKey"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// BoardConfig carries the default filter window.
type BoardConfig struct {
	MinMinutes int `yaml:"minMinutes" validate:"gte=0"`
	MaxMinutes int `yaml:"maxMinutes" validate:"gte=0"`
	Limit      int `yaml:"limit" validate:"gte=0"`
}

// Config is the root configuration.
type Config struct {
	Tables     TablesConfig     `yaml:"tables"`
	Storage    StorageConfig    `yaml:"storage"`
	Subway     SubwayConfig     `yaml:"subway"`
	PATH       PATHConfig       `yaml:"path"`
	TransitAPI TransitAPIConfig `yaml:"transitAPI"`
	Board      BoardConfig      `yaml:"board"`
}

// Load reads and validates a configuration file, then applies
// defaults. A missing file is not an error when path is empty; the
// zero config with defaults applied is returned instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Board.MaxMinutes == 0 {
		c.Board.MinMinutes = 2
		c.Board.MaxMinutes = 20
	}
	if c.Subway.APIKey == "" {
		c.Subway.APIKey = os.Getenv("MTA_API_KEY")
	}
	if c.TransitAPI.APIKey == "" {
		c.TransitAPI.APIKey = os.Getenv("TRANSIT_API_KEY")
	}
}

// SubwayTimeout returns the configured subway fetch timeout, or zero
// to take the adapter default.
func (c *Config) SubwayTimeout() time.Duration {
	return time.Duration(c.Subway.TimeoutMS) * time.Millisecond
}

// PATHTimeout returns the configured PATH fetch timeout, or zero to
// take the adapter default.
func (c *Config) PATHTimeout() time.Duration {
	return time.Duration(c.PATH.TimeoutMS) * time.Millisecond
}

// TransitAPITimeout returns the configured departure-board fetch
// timeout, or zero to take the adapter default.
func (c *Config) TransitAPITimeout() time.Duration {
	return time.Duration(c.TransitAPI.TimeoutMS) * time.Millisecond
}
