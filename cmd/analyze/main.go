// Package main provides the entry point for the odds analysis CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-analyzer/internal/analysis"
	"github.com/yourusername/odds-analyzer/internal/config"
	"github.com/yourusername/odds-analyzer/internal/feed"
	"github.com/yourusername/odds-analyzer/internal/logger"
	"github.com/yourusername/odds-analyzer/internal/models"
	"github.com/yourusername/odds-analyzer/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		targetDate = flag.String("date", "", "Target day to analyze (YYYY-MM-DD, default today)")
		teamFilter = flag.String("team", "", "Only analyze matches whose team names contain this text")
		leagueFlt  = flag.String("league", "", "Only analyze matches in leagues containing this text")
		lookback   = flag.Int("lookback", 365, "Historical window in days before the target date (1-365)")
		outputDir  = flag.String("output", "", "Override the report output directory")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	appLogger := logger.NewLogger(cfg.App.LogLevel)
	ctx := context.Background()

	day := *targetDate
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		appLogger.Fatalf("Invalid target date %q: %v", day, err)
	}

	targets := fetchTargets(ctx, cfg, appLogger, day, *teamFilter, *leagueFlt)
	historical := loadHistorical(cfg, appLogger, day, *lookback)

	engine := analysis.NewEngine(analysis.Config{
		Threshold:  cfg.Analysis.Threshold,
		MinMarkets: cfg.Analysis.MinMarkets,
	}, appLogger)

	analogues := engine.FindAnalogues(targets, historical)
	if len(analogues) == 0 {
		appLogger.Info("No analogues found")
		return
	}

	dir := cfg.Analysis.OutputDir
	if *outputDir != "" {
		dir = *outputDir
	}
	writer := analysis.NewReportWriter(dir, appLogger)
	path, err := writer.Write(analogues)
	if err != nil {
		appLogger.Fatalf("Failed to write report: %v", err)
	}

	fmt.Printf("Found %d analogues, report written to %s\n", len(analogues), path)
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if config.SecretsEnabled() {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			fmt.Fprintln(os.Stderr, "AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
			os.Exit(1)
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load secrets: %v\n", err)
			os.Exit(1)
		}
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// fetchTargets pulls the target day's scheduled matches from the feed.
// A missing token is not fatal; the run just has nothing to analyze.
func fetchTargets(ctx context.Context, cfg *config.Config, appLogger *logrus.Logger, day, teamFilter, leagueFilter string) []*models.Match {
	httpCfg := feed.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.FeedTimeout()
	httpCfg.MaxRetries = cfg.Feed.MaxRetries
	httpCfg.RateLimit = float64(cfg.Feed.RateLimitRPS)

	httpClient := feed.NewRateLimitedHTTPClient(httpCfg, appLogger)
	client := feed.NewMackolikClient(httpClient, feed.Config{
		WebBaseURL:     cfg.Feed.WebBaseURL,
		APIBaseURL:     cfg.Feed.APIBaseURL,
		Application:    cfg.Feed.Application,
		UserAgent:      cfg.Feed.UserAgent,
		TimezoneOffset: cfg.Feed.TimezoneOffset,
		TokenTTL:       cfg.TokenTTL(),
		Enabled:        cfg.Feed.Enabled,
	}, appLogger)
	defer client.Close()

	token, err := client.GetToken(ctx)
	if err != nil {
		appLogger.WithError(err).Error("Token unavailable, analyzing without target matches")
		return nil
	}

	matches, err := client.MatchesForDate(ctx, token, day)
	if err != nil {
		appLogger.WithError(err).Error("Failed to fetch target day")
		return nil
	}

	var targets []*models.Match
	for _, match := range matches {
		if !match.IsUpcoming() {
			continue
		}
		if !matchesFilter(match, teamFilter, leagueFilter) {
			continue
		}
		targets = append(targets, match)
	}

	appLogger.WithFields(logrus.Fields{
		"day":     day,
		"fetched": len(matches),
		"targets": len(targets),
	}).Info("Target matches selected")
	return targets
}

// loadHistorical flattens the archive's lookback window into the
// finished-match corpus, ending the day before the target
func loadHistorical(cfg *config.Config, appLogger *logrus.Logger, targetDay string, lookbackDays int) []*models.Match {
	st := store.NewStore(cfg.ArchivePath(), appLogger)
	archive := st.Load()

	start, end := historicalWindow(targetDay, lookbackDays)

	// MatchesBetween walks days in sorted order, which keeps the
	// engine's dedup pass deterministic
	var historical []*models.Match
	for _, match := range archive.MatchesBetween(start, end) {
		if match.IsFinished() {
			historical = append(historical, match)
		}
	}

	appLogger.WithFields(logrus.Fields{
		"start":   start,
		"end":     end,
		"matches": len(historical),
	}).Info("Historical corpus loaded")
	return historical
}

// historicalWindow computes the inclusive archive day range covering
// lookbackDays days up to (and excluding) the target day
func historicalWindow(targetDay string, lookbackDays int) (string, string) {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	if lookbackDays > 365 {
		lookbackDays = 365
	}

	target, err := time.Parse("2006-01-02", targetDay)
	if err != nil {
		return targetDay, targetDay
	}
	start := target.AddDate(0, 0, -lookbackDays).Format("2006-01-02")
	end := target.AddDate(0, 0, -1).Format("2006-01-02")
	return start, end
}

func matchesFilter(match *models.Match, teamFilter, leagueFilter string) bool {
	if teamFilter != "" {
		team := strings.ToLower(teamFilter)
		if !strings.Contains(strings.ToLower(match.HomeTeam), team) &&
			!strings.Contains(strings.ToLower(match.AwayTeam), team) {
			return false
		}
	}
	if leagueFilter != "" {
		if !strings.Contains(strings.ToLower(match.League), strings.ToLower(leagueFilter)) {
			return false
		}
	}
	return true
}
