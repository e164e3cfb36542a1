// Package config loads project-level settings from a wayplan.yml file and
// the environment. Environment variables override file values so secrets
// stay out of checked-in config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAddr is the REST listen address when none is configured.
	DefaultAddr = ":8080"

	// DefaultTripLogDir is where per-trip audit files land.
	DefaultTripLogDir = "trip_logs"
)

// Config holds settings for the wayplan CLI and servers.
type Config struct {
	GeminiAPIKey  string `yaml:"geminiApiKey,omitempty"`
	GeminiModel   string `yaml:"geminiModel,omitempty"`
	WeatherAPIKey string `yaml:"weatherApiKey,omitempty"`
	SearchAPIKey  string `yaml:"searchApiKey,omitempty"`
	MongoURI      string `yaml:"mongoUri,omitempty"`
	RedisAddr     string `yaml:"redisAddr,omitempty"`
	Addr          string `yaml:"addr,omitempty"`
	TripLogDir    string `yaml:"tripLogDir,omitempty"`

	// Planner tunables. Zero values fall back to the planner defaults.
	DefaultTripDays       int `yaml:"defaultTripDays,omitempty"`
	MaxConcurrentDays     int `yaml:"maxConcurrentDays,omitempty"`
	RepairAttempts        int `yaml:"repairAttempts,omitempty"`
	AdvisoryRainThreshold int `yaml:"advisoryRainThreshold,omitempty"`
}

// Load attempts to read wayplan.yml or wayplan.yaml from the given
// directory, then applies environment overrides and defaults. A missing
// file yields a usable config, not an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{}
	for _, name := range []string{"wayplan.yml", "wayplan.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		break
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.GeminiAPIKey, "GEMINI_API_KEY")
	overlay(&c.GeminiModel, "GEMINI_MODEL")
	overlay(&c.WeatherAPIKey, "WEATHER_API_KEY")
	overlay(&c.SearchAPIKey, "WEB_SEARCH_API_KEY")
	overlay(&c.MongoURI, "MONGODB_URI")
	overlay(&c.RedisAddr, "REDIS_ADDR")
	overlay(&c.Addr, "WAYPLAN_ADDR")
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.TripLogDir == "" {
		c.TripLogDir = DefaultTripLogDir
	}
}

// overlay replaces *dst with the named environment variable when set.
func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
