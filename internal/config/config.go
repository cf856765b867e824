// Package config provides configuration management for the concaf prediction service.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Sources   SourcesConfig   `mapstructure:"sources" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
	AWS       AWSConfig       `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ModelConfig holds the prediction engine parameters
type ModelConfig struct {
	DecayRate       float64 `mapstructure:"decay_rate" validate:"gte=0"`
	ReferenceDate   string  `mapstructure:"reference_date" validate:"omitempty,refdate"`
	ScorelineCutoff int     `mapstructure:"scoreline_cutoff" validate:"required,gt=0"`
	Workers         int     `mapstructure:"workers" validate:"gte=0"`
	MalformedPolicy string  `mapstructure:"malformed_policy" validate:"required,malformedpolicy"`
}

// TeamAlias maps a provider spelling to the canonical team name
type TeamAlias struct {
	From string `mapstructure:"from" validate:"required"`
	To   string `mapstructure:"to" validate:"required"`
}

// SourcesConfig describes where results and fixtures are read from
type SourcesConfig struct {
	LedgerCSV         string      `mapstructure:"ledger_csv"`
	FixturesCSV       string      `mapstructure:"fixtures_csv"`
	ResultsURLs       []string    `mapstructure:"results_urls" validate:"omitempty,dive,url"`
	FixturesURLs      []string    `mapstructure:"fixtures_urls" validate:"omitempty,dive,url"`
	DefaultYear       int         `mapstructure:"default_year" validate:"omitempty,gte=1900,lte=2100"`
	TeamAliases       []TeamAlias `mapstructure:"team_aliases" validate:"omitempty,dive"`
	UserAgent         string      `mapstructure:"user_agent"`
	RequestsPerSecond float64     `mapstructure:"requests_per_second" validate:"gte=0"`
	TimeoutSeconds    int         `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries        int         `mapstructure:"max_retries" validate:"gte=0"`
	CacheTTLSeconds   int         `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	SQLitePath     string `mapstructure:"sqlite_path"`
}

// StorageConfig configures the S3-compatible bucket that receives exported tables
type StorageConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Endpoint       string `mapstructure:"endpoint"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	Prefix         string `mapstructure:"prefix"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// SchedulerConfig represents periodic pipeline scheduling
type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// ServerConfig represents the health, metrics and feed HTTP server
type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// AWSConfig locates the optional Secrets Manager overlay
type AWSConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// HTTPTimeout returns the per-request timeout for scraped sources
func (s SourcesConfig) HTTPTimeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long fetched pages are reused
func (s SourcesConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// AliasMap flattens the alias list for lookups
func (s SourcesConfig) AliasMap() map[string]string {
	m := make(map[string]string, len(s.TeamAliases))
	for _, a := range s.TeamAliases {
		m[a.From] = a.To
	}
	return m
}
