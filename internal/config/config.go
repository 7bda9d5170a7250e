// Package config provides configuration management for the odds analyzer.
package config

import (
	"path/filepath"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Feed      FeedConfig      `mapstructure:"feed" validate:"required"`
	Archive   ArchiveConfig   `mapstructure:"archive" validate:"required"`
	Ingestion IngestionConfig `mapstructure:"ingestion" validate:"required"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// FeedConfig represents the odds feed configuration
type FeedConfig struct {
	WebBaseURL      string `mapstructure:"web_base_url" validate:"required,url"`
	APIBaseURL      string `mapstructure:"api_base_url" validate:"required,url"`
	Application     string `mapstructure:"application" validate:"required"`
	UserAgent       string `mapstructure:"user_agent"`
	TimezoneOffset  int    `mapstructure:"timezone_offset" validate:"gte=-12,lte=14"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RateLimitRPS    int    `mapstructure:"rate_limit_rps" validate:"required,gt=0"`
	MaxRetries      int    `mapstructure:"max_retries" validate:"gte=0"`
	TokenTTLSeconds int    `mapstructure:"token_ttl_seconds" validate:"required,gt=0"`
	Enabled         bool   `mapstructure:"enabled"`
}

// ArchiveConfig represents the flat-file archive location
type ArchiveConfig struct {
	DataDir  string `mapstructure:"data_dir" validate:"required"`
	FileName string `mapstructure:"file_name" validate:"required"`
}

// IngestionConfig represents the archive refresh behavior
type IngestionConfig struct {
	LookbackDays int            `mapstructure:"lookback_days" validate:"required,gt=0"`
	Schedule     ScheduleConfig `mapstructure:"schedule"`
}

// ScheduleConfig represents the periodic refresh schedule
type ScheduleConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	RefreshCron string `mapstructure:"refresh_cron"`
}

// AnalysisConfig represents similarity engine parameters
type AnalysisConfig struct {
	Threshold  float64 `mapstructure:"threshold" validate:"required,gt=0,lte=1"`
	MinMarkets int     `mapstructure:"min_markets" validate:"required,gt=0"`
	OutputDir  string  `mapstructure:"output_dir" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ArchivePath returns the full path of the archive file
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Archive.DataDir, c.Archive.FileName)
}

// FeedTimeout returns the feed request timeout as a duration
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// TokenTTL returns the feed token cache lifetime as a duration
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Feed.TokenTTLSeconds) * time.Second
}
