// Package config provides configuration management for the odds analyzer.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	analyzerName                 = "odds-analyzer"
	developmentEnv               = "development"
	productionEnv                = "production"
	invalidEnv                   = "invalid"
	testAppName                  = "test-app"
	testFeedApplication          = "TEST_FEED_APPLICATION"
	expandedApplication          = "expanded_application_id"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != analyzerName {
		t.Errorf("expected app name '%s', got '%s'", analyzerName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Feed.APIBaseURL != "https://api.example.com" {
		t.Errorf("expected feed api base url, got '%s'", cfg.Feed.APIBaseURL)
	}

	if cfg.Feed.TimezoneOffset != 3 {
		t.Errorf("expected timezone offset 3, got %d", cfg.Feed.TimezoneOffset)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults survive a missing file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != analyzerName {
		t.Errorf("expected default app name '%s', got '%s'", analyzerName, cfg.App.Name)
	}

	if cfg.Ingestion.LookbackDays != 7 {
		t.Errorf("expected default lookback of 7 days, got %d", cfg.Ingestion.LookbackDays)
	}

	if cfg.Archive.FileName != "matches.json" {
		t.Errorf("expected default archive file name, got '%s'", cfg.Archive.FileName)
	}

	if cfg.Analysis.Threshold != 0.05 {
		t.Errorf("expected default threshold 0.05, got %v", cfg.Analysis.Threshold)
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("ODDS_ANALYZER_APP_NAME", testAppName)
	defer os.Unsetenv("ODDS_ANALYZER_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadConfigExpansion tests ${VAR} placeholder expansion
func TestLoadConfigExpansion(t *testing.T) {
	os.Setenv(testFeedApplication, expandedApplication)
	defer os.Unsetenv(testFeedApplication)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Feed.Application != expandedApplication {
		t.Errorf("expected expanded application '%s', got '%s'", expandedApplication, cfg.Feed.Application)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidLogLevel tests validation of unknown log levels
func TestValidateInvalidLogLevel(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.LogLevel = "loud"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}

	if !strings.Contains(err.Error(), "LogLevel") {
		t.Errorf("expected log level validation error, got: %v", err)
	}
}

// TestValidateInvalidThreshold tests the threshold bounds
func TestValidateInvalidThreshold(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Analysis.Threshold = 1.5
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for threshold above 1")
	}
}

// TestValidateScheduleCron tests the cron expression cross-field check
func TestValidateScheduleCron(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Ingestion.Schedule.Enabled = true
	cfg.Ingestion.Schedule.RefreshCron = "not a cron"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid cron expression")
	}
	if !strings.Contains(err.Error(), "cron") {
		t.Errorf("expected cron validation error, got: %v", err)
	}

	cfg.Ingestion.Schedule.RefreshCron = "0 3 * * *"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid cron to pass, got %v", err)
	}
}

// TestValidateProductionConstraints tests production-only rules
func TestValidateProductionConstraints(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = productionEnv
	cfg.App.LogLevel = "debug"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for debug logging in production")
	}

	cfg.App.LogLevel = "info"
	cfg.Feed.Enabled = false
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for disabled feed in production")
	}

	cfg.Feed.Enabled = true
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

// TestArchivePath tests archive path assembly
func TestArchivePath(t *testing.T) {
	cfg := &Config{
		Archive: ArchiveConfig{DataDir: "data", FileName: "matches.json"},
	}

	if got := cfg.ArchivePath(); got != "data/matches.json" {
		t.Errorf("expected 'data/matches.json', got '%s'", got)
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: developmentEnv},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}
