// Package analysis finds historical analogues for upcoming matches by
// odds proximity and backtests how each market outcome resolved.
package analysis

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-analyzer/internal/metrics"
	"github.com/yourusername/odds-analyzer/internal/models"
)

// Config holds the similarity engine parameters
type Config struct {
	Threshold  float64 // max |odds delta| per outcome
	MinMarkets int     // qualifying markets needed to accept a pair
}

// DefaultConfig returns the standard engine parameters
func DefaultConfig() Config {
	return Config{
		Threshold:  0.05,
		MinMarkets: 3,
	}
}

// OutcomeComparison is one outcome's odds on both sides of a pair
type OutcomeComparison struct {
	Outcome       string
	TargetOdd     float64
	HistoricalOdd float64
	Diff          float64 // absolute, rounded to 2 decimal places
}

// MarketMatch is one market that qualified for a pair
type MarketMatch struct {
	Market   models.MarketType
	Outcomes []OutcomeComparison
}

// Analogue pairs one target match with one similar historical match
type Analogue struct {
	Target         *models.Match
	Historical     *models.Match
	Markets        []MarketMatch
	MatchedMarkets int
}

// Engine performs the pairwise odds-similarity search
type Engine struct {
	config Config
	logger *logrus.Logger
}

// NewEngine creates a new similarity engine
func NewEngine(cfg Config, logger *logrus.Logger) *Engine {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.MinMarkets <= 0 {
		cfg.MinMarkets = DefaultConfig().MinMarkets
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, logger: logger}
}

// Config returns the engine parameters
func (e *Engine) Config() Config {
	return e.config
}

// FindAnalogues compares every scheduled target against every finished
// historical match and returns the accepted pairs sorted by qualifying
// market count, strongest first. Empty inputs yield an empty result.
func (e *Engine) FindAnalogues(targets, historical []*models.Match) []Analogue {
	start := time.Now()

	targets = dedupeTargets(targets)
	historical = dedupeHistorical(historical)

	var analogues []Analogue
	for _, target := range targets {
		if !target.IsUpcoming() {
			continue
		}
		for _, hist := range historical {
			if !hist.IsFinished() {
				continue
			}
			if analogue, ok := e.compare(target, hist); ok {
				analogues = append(analogues, analogue)
			}
		}
	}

	sort.SliceStable(analogues, func(i, j int) bool {
		return analogues[i].MatchedMarkets > analogues[j].MatchedMarkets
	})

	elapsed := time.Since(start)
	metrics.RecordAnalysis(len(analogues), elapsed.Seconds())
	e.logger.WithFields(logrus.Fields{
		"targets":    len(targets),
		"historical": len(historical),
		"analogues":  len(analogues),
		"elapsed":    elapsed,
	}).Info("Similarity search complete")

	return analogues
}

// compare evaluates one target/historical pair against the catalogue
func (e *Engine) compare(target, hist *models.Match) (Analogue, bool) {
	threshold := decimal.NewFromFloat(e.config.Threshold)

	var matched []MarketMatch
	for _, spec := range models.Catalogue {
		if spec.HalftimeDependent && hist.HalftimeScore == nil {
			continue
		}
		if market, ok := e.compareMarket(target, hist, spec, threshold); ok {
			matched = append(matched, market)
		}
	}

	if len(matched) < e.config.MinMarkets {
		return Analogue{}, false
	}
	hasData := false
	for _, market := range matched {
		if len(market.Outcomes) > 0 {
			hasData = true
			break
		}
	}
	if !hasData {
		return Analogue{}, false
	}

	return Analogue{
		Target:         target,
		Historical:     hist,
		Markets:        matched,
		MatchedMarkets: len(matched),
	}, true
}

// compareMarket checks one market's outcomes against the threshold.
// Ordinary markets qualify only unanimously over the outcomes quoted on
// both sides; markets with a quorum qualify once that many outcomes
// pass.
func (e *Engine) compareMarket(target, hist *models.Match, spec models.MarketSpec, threshold decimal.Decimal) (MarketMatch, bool) {
	var passed []OutcomeComparison
	total := 0

	for _, outcome := range spec.Outcomes {
		targetOdd, ok := target.Odd(spec.Type, outcome)
		if !ok {
			continue
		}
		histOdd, ok := hist.Odd(spec.Type, outcome)
		if !ok {
			continue
		}
		total++

		diff := decimal.NewFromFloat(targetOdd).Sub(decimal.NewFromFloat(histOdd)).Abs()
		if diff.GreaterThan(threshold) {
			continue
		}
		passed = append(passed, OutcomeComparison{
			Outcome:       outcome,
			TargetOdd:     targetOdd,
			HistoricalOdd: histOdd,
			Diff:          diff.Round(2).InexactFloat64(),
		})
	}

	if spec.MatchQuorum > 0 {
		if len(passed) < spec.MatchQuorum {
			return MarketMatch{}, false
		}
	} else {
		if total == 0 || len(passed) != total {
			return MarketMatch{}, false
		}
	}

	return MarketMatch{Market: spec.Type, Outcomes: passed}, true
}

// dedupeTargets keeps the first record per (home, away) pairing
func dedupeTargets(matches []*models.Match) []*models.Match {
	type key struct{ home, away string }
	seen := make(map[key]bool)

	var out []*models.Match
	for _, m := range matches {
		k := key{m.HomeTeam, m.AwayTeam}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

// dedupeHistorical keeps the first record per (home, away, date)
func dedupeHistorical(matches []*models.Match) []*models.Match {
	type key struct{ home, away, date string }
	seen := make(map[key]bool)

	var out []*models.Match
	for _, m := range matches {
		k := key{m.HomeTeam, m.AwayTeam, m.Date}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}
