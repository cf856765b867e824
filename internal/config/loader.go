// Package config provides configuration management for the concaf prediction service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "CONCAF"
)

// Load reads and parses the configuration from file and environment variables.
// ${VAR} placeholders in the YAML are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	SetDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// SetDefaults registers the default value of every optional key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "concaf")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("model.decay_rate", 0.1)
	v.SetDefault("model.scoreline_cutoff", 6)
	v.SetDefault("model.workers", 0)
	v.SetDefault("model.malformed_policy", "skip")

	v.SetDefault("sources.requests_per_second", 1.0)
	v.SetDefault("sources.timeout_seconds", 30)
	v.SetDefault("sources.max_retries", 3)
	v.SetDefault("sources.cache_ttl_seconds", 900)
	v.SetDefault("sources.team_aliases", []map[string]string{
		{"from": "Morocco", "to": "Maroc"},
		{"from": "Tunisia", "to": "Tunisie"},
		{"from": "DR Congo", "to": "Congo"},
		{"from": "Burkina", "to": "Burkina Faso"},
	})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "concaf.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("storage.prefix", "tables")
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("scheduler.cron", "0 */6 * * *")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_path", "/metrics")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
