// Package ingest coordinates the per-day archive refresh workflow.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-analyzer/internal/feed"
	"github.com/yourusername/odds-analyzer/internal/logger"
	"github.com/yourusername/odds-analyzer/internal/metrics"
	"github.com/yourusername/odds-analyzer/internal/models"
	"github.com/yourusername/odds-analyzer/internal/store"
)

const dayLayout = "2006-01-02"

// Coordinator fans fetches out across calendar days and merges the
// results into the archive. The archive and the run statistics are the
// only shared state; both sit behind one mutex.
type Coordinator struct {
	client feed.Client
	store  *store.Store
	stats  *Stats
	logger *logrus.Logger
}

// NewCoordinator creates a new ingestion coordinator
func NewCoordinator(client feed.Client, st *store.Store, log *logrus.Logger) (*Coordinator, error) {
	if client == nil {
		return nil, fmt.Errorf("feed client is required")
	}
	if st == nil {
		return nil, fmt.Errorf("archive store is required")
	}
	if log == nil {
		log = logrus.New()
	}
	return &Coordinator{
		client: client,
		store:  st,
		stats:  NewStats(),
		logger: log,
	}, nil
}

// Stats returns the statistics of the most recent run
func (c *Coordinator) Stats() *Stats {
	return c.stats
}

// Run refreshes the archive for every day between start and end
// inclusive. Only finished matches are archived. A failure on one day
// never disturbs the others; the archive is saved exactly once, after
// every worker has joined.
func (c *Coordinator) Run(ctx context.Context, token string, start, end time.Time) (*store.Archive, error) {
	c.stats.Reset()
	startTime := time.Now()

	archive := c.store.Load()

	days := daysBetween(start, end)
	c.stats.RequestedDays = len(days)
	c.logger.WithFields(logrus.Fields{
		"start": start.Format(dayLayout),
		"end":   end.Format(dayLayout),
		"days":  len(days),
	}).Info("Starting archive refresh")

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, day := range days {
		wg.Add(1)
		go func(day string) {
			defer wg.Done()
			c.processDay(ctx, token, day, archive, &mu)
		}(day)
	}
	wg.Wait()

	now := time.Now()
	archive.LastUpdate = &now
	if err := c.store.Save(archive); err != nil {
		c.logger.WithError(err).Error("Failed to save archive")
	}

	c.stats.Duration = time.Since(startTime)
	metrics.RecordIngestDuration(c.stats.Duration.Seconds())
	metrics.UpdateArchiveSize(len(archive.Days), archive.TotalMatches())

	c.logger.WithField("stats", c.stats.String()).Info("Archive refresh complete")
	return archive, nil
}

func (c *Coordinator) processDay(ctx context.Context, token, day string, archive *store.Archive, mu *sync.Mutex) {
	log := logger.WithDay(c.logger, day)

	matches, err := c.client.MatchesForDate(ctx, token, day)
	if err != nil {
		c.stats.RecordError()
		metrics.RecordIngestError()
		log.WithError(err).Warn("Failed to fetch day, skipping")
		return
	}

	finished := make([]*models.Match, 0, len(matches))
	for _, match := range matches {
		if !match.IsFinished() {
			continue
		}
		if err := match.Validate(); err != nil {
			c.stats.RecordValidationError()
			log.WithError(err).WithField("match_id", match.ID).Warn("Dropping invalid match record")
			continue
		}
		finished = append(finished, match)
	}

	mu.Lock()
	result := c.store.MergeDay(archive, day, finished)
	mu.Unlock()

	c.stats.RecordDay(result.Inserted, result.Updated)
	metrics.RecordDayProcessed(result.Inserted, result.Updated)
	log.WithFields(logrus.Fields{
		"fetched":  len(matches),
		"finished": len(finished),
		"inserted": result.Inserted,
		"updated":  result.Updated,
	}).Info("Day merged")
}

// daysBetween lists every calendar day from start to end inclusive.
// Days are taken from each value's own wall clock; truncating against
// the UTC epoch would shift the window for non-UTC operators.
func daysBetween(start, end time.Time) []string {
	last := end.Format(dayLayout)

	var days []string
	for d := start; ; d = d.AddDate(0, 0, 1) {
		day := d.Format(dayLayout)
		if day > last {
			break
		}
		days = append(days, day)
	}
	return days
}
