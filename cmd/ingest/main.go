package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/odds-analyzer/internal/config"
	"github.com/yourusername/odds-analyzer/internal/feed"
	"github.com/yourusername/odds-analyzer/internal/ingest"
	"github.com/yourusername/odds-analyzer/internal/logger"
	"github.com/yourusername/odds-analyzer/internal/metrics"
	"github.com/yourusername/odds-analyzer/internal/scheduler"
	"github.com/yourusername/odds-analyzer/internal/store"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	startDate  string
	endDate    string
	scheduled  bool
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&startDate, "start", "", "First day to refresh (YYYY-MM-DD, default lookback window)")
	rootCmd.Flags().StringVar(&endDate, "end", "", "Last day to refresh (YYYY-MM-DD, default today)")
	rootCmd.Flags().BoolVar(&scheduled, "schedule", false, "Run the periodic refresh scheduler instead of a single pass")
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Refresh the historical odds archive",
	Long:  `Fetches daily match and odds data from the feed and merges finished matches into the flat-file archive.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if config.SecretsEnabled() {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func run(ctx context.Context) error {
	appLogger.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
		"built":   BuildDate,
	}).Info("Starting archive ingestion")

	if cfg.Metrics.Enabled {
		startMetricsServer()
	}

	client := buildFeedClient()
	defer client.Close()

	st := store.NewStore(cfg.ArchivePath(), appLogger)
	coordinator, err := ingest.NewCoordinator(client, st, appLogger)
	if err != nil {
		return err
	}

	if scheduled {
		return runScheduler(coordinator, client)
	}
	return runOnce(ctx, coordinator, client)
}

func runOnce(ctx context.Context, coordinator *ingest.Coordinator, client *feed.MackolikClient) error {
	start, end, err := resolveRange()
	if err != nil {
		return err
	}

	token, err := client.GetToken(ctx)
	if err != nil {
		// The archive on disk stays as it was; nothing to roll back
		appLogger.WithError(err).Error("Token unavailable, ingestion skipped")
		return nil
	}

	if _, err := coordinator.Run(ctx, token, start, end); err != nil {
		return err
	}

	fmt.Println(coordinator.Stats().String())
	return nil
}

func runScheduler(coordinator *ingest.Coordinator, client *feed.MackolikClient) error {
	sched := scheduler.NewScheduler(coordinator, client, appLogger)
	if err := sched.ScheduleArchiveRefresh(cfg.Ingestion.Schedule.RefreshCron, cfg.Ingestion.LookbackDays); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	appLogger.WithField("next_run", sched.NextRun()).Info("Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return sched.Stop()
}

func buildFeedClient() *feed.MackolikClient {
	httpCfg := feed.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.FeedTimeout()
	httpCfg.MaxRetries = cfg.Feed.MaxRetries
	httpCfg.RateLimit = float64(cfg.Feed.RateLimitRPS)

	httpClient := feed.NewRateLimitedHTTPClient(httpCfg, appLogger)
	return feed.NewMackolikClient(httpClient, feed.Config{
		WebBaseURL:     cfg.Feed.WebBaseURL,
		APIBaseURL:     cfg.Feed.APIBaseURL,
		Application:    cfg.Feed.Application,
		UserAgent:      cfg.Feed.UserAgent,
		TimezoneOffset: cfg.Feed.TimezoneOffset,
		TokenTTL:       cfg.TokenTTL(),
		Enabled:        cfg.Feed.Enabled,
	}, appLogger)
}

func resolveRange() (time.Time, time.Time, error) {
	end := time.Now()
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -(cfg.Ingestion.LookbackDays - 1))
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}
		start = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return start, end, nil
}

func startMetricsServer() {
	metrics.InitRegistry()
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		appLogger.WithField("addr", addr).Info("Metrics endpoint listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			appLogger.WithError(err).Warn("Metrics endpoint stopped")
		}
	}()
}
