package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-analyzer/internal/models"
)

const reportDateLayout = "02.01.2006"

// ReportWriter renders analogue findings to plain-text files
type ReportWriter struct {
	outputDir string
	logger    *logrus.Logger
}

// NewReportWriter creates a new report writer
func NewReportWriter(outputDir string, logger *logrus.Logger) *ReportWriter {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReportWriter{outputDir: outputDir, logger: logger}
}

// Write renders one report covering every target present in the
// analogue set and returns the written path
func (w *ReportWriter) Write(analogues []Analogue) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	grouped, order := groupByTarget(analogues)

	var builder strings.Builder
	builder.WriteString("Odds Analysis Report\n")
	builder.WriteString("====================\n")
	builder.WriteString(fmt.Sprintf("Run: %s\n", uuid.New().String()))
	builder.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(reportDateLayout+" 15:04")))

	for _, target := range order {
		writeTargetSection(&builder, target, grouped[target])
	}
	if len(order) == 0 {
		builder.WriteString("No analogues found.\n")
	}

	path := filepath.Join(w.outputDir, w.fileName(order))
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	w.logger.WithFields(logrus.Fields{
		"path":    path,
		"targets": len(order),
	}).Info("Report written")
	return path, nil
}

// fileName picks the single-match, league or multi variant
func (w *ReportWriter) fileName(targets []*models.Match) string {
	stamp := time.Now().Format("20060102_150405")

	switch {
	case len(targets) == 1:
		t := targets[0]
		return fmt.Sprintf("analysis_%s_vs_%s_%s.txt", sanitize(t.HomeTeam), sanitize(t.AwayTeam), stamp)
	case len(targets) > 1 && sameLeague(targets):
		return fmt.Sprintf("league_analysis_%s_%s.txt", sanitize(targets[0].League), stamp)
	default:
		return fmt.Sprintf("multi_analysis_%s.txt", stamp)
	}
}

func writeTargetSection(builder *strings.Builder, target *models.Match, analogues []Analogue) {
	builder.WriteString(fmt.Sprintf("Target: %s vs %s\n", target.HomeTeam, target.AwayTeam))
	builder.WriteString(fmt.Sprintf("League: %s | Date: %s | Kickoff: %s\n",
		target.League, displayDate(target.Date), target.KickoffTime))
	builder.WriteString(fmt.Sprintf("Analogues found: %d\n\n", len(analogues)))

	stats := ComputeStats(analogues)
	writeStats(builder, stats)
	writeAnalogues(builder, analogues)
	builder.WriteString(strings.Repeat("=", 60) + "\n\n")
}

// writeStats prints markets by sample count, outcomes by realization
// rate, both descending
func writeStats(builder *strings.Builder, stats Stats) {
	if len(stats) == 0 {
		return
	}
	builder.WriteString("Outcome statistics:\n")

	markets := make([]models.MarketType, 0, len(stats))
	for market := range stats {
		markets = append(markets, market)
	}
	sort.Slice(markets, func(i, j int) bool {
		ti, tj := stats.MarketTotal(markets[i]), stats.MarketTotal(markets[j])
		if ti != tj {
			return ti > tj
		}
		return markets[i] < markets[j]
	})

	for _, market := range markets {
		builder.WriteString(fmt.Sprintf("  %s (%d samples):\n", market, stats.MarketTotal(market)))

		outcomes := make([]string, 0, len(stats[market]))
		for outcome := range stats[market] {
			outcomes = append(outcomes, outcome)
		}
		sort.Slice(outcomes, func(i, j int) bool {
			pi, pj := stats[market][outcomes[i]].Percentage(), stats[market][outcomes[j]].Percentage()
			if pi != pj {
				return pi > pj
			}
			return outcomes[i] < outcomes[j]
		})

		for _, outcome := range outcomes {
			stat := stats[market][outcome]
			builder.WriteString(fmt.Sprintf("    %-6s %d/%d (%.1f%%)\n",
				outcome, stat.Realized, stat.Total, stat.Percentage()))
		}
	}
	builder.WriteString("\n")
}

func writeAnalogues(builder *strings.Builder, analogues []Analogue) {
	for i, analogue := range analogues {
		hist := analogue.Historical
		builder.WriteString(fmt.Sprintf("%d) %s vs %s (%s, %s)",
			i+1, hist.HomeTeam, hist.AwayTeam, hist.League, displayDate(hist.Date)))
		if hist.FinalScore != nil {
			builder.WriteString(fmt.Sprintf(" FT %s", hist.FinalScore))
		}
		if hist.HalftimeScore != nil {
			builder.WriteString(fmt.Sprintf(", HT %s", hist.HalftimeScore))
		}
		builder.WriteString(fmt.Sprintf(" [%d markets]\n", analogue.MatchedMarkets))

		for _, market := range analogue.Markets {
			builder.WriteString(fmt.Sprintf("   %s:\n", market.Market))
			builder.WriteString(fmt.Sprintf("     %-8s %7s %7s %7s\n", "outcome", "today", "hist", "diff"))
			for _, comparison := range market.Outcomes {
				builder.WriteString(fmt.Sprintf("     %-8s %7.2f %7.2f %7.2f\n",
					comparison.Outcome, comparison.TargetOdd, comparison.HistoricalOdd, comparison.Diff))
			}
		}
		builder.WriteString("\n")
	}
}

// groupByTarget splits the sorted analogue list per target, preserving
// both the per-target ordering and first-seen target order
func groupByTarget(analogues []Analogue) (map[*models.Match][]Analogue, []*models.Match) {
	grouped := make(map[*models.Match][]Analogue)
	var order []*models.Match
	for _, analogue := range analogues {
		if _, seen := grouped[analogue.Target]; !seen {
			order = append(order, analogue.Target)
		}
		grouped[analogue.Target] = append(grouped[analogue.Target], analogue)
	}
	return grouped, order
}

func sameLeague(targets []*models.Match) bool {
	for _, t := range targets[1:] {
		if t.League != targets[0].League {
			return false
		}
	}
	return true
}

// displayDate converts the archive's day key to DD.MM.YYYY
func displayDate(day string) string {
	parsed, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return parsed.Format(reportDateLayout)
}

// sanitize keeps file names portable
func sanitize(s string) string {
	var builder strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String()
}
