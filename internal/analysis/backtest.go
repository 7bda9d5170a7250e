package analysis

import (
	"strconv"
	"strings"

	"github.com/yourusername/odds-analyzer/internal/models"
)

// OutcomeStat counts how often one market outcome actually occurred
// across a set of analogues
type OutcomeStat struct {
	Realized int
	Total    int
}

// Percentage returns the realization rate, 0 when nothing was counted
func (s OutcomeStat) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Realized) / float64(s.Total) * 100
}

// Stats holds per-market, per-outcome realization counters
type Stats map[models.MarketType]map[string]OutcomeStat

// MarketTotal sums the Total counters of one market
func (s Stats) MarketTotal(market models.MarketType) int {
	total := 0
	for _, stat := range s[market] {
		total += stat.Total
	}
	return total
}

// ComputeStats backtests every matched market outcome against what the
// historical match's recorded scores say actually happened. Analogues
// whose scores are missing contribute to no counters.
func ComputeStats(analogues []Analogue) Stats {
	stats := make(Stats)
	for _, analogue := range analogues {
		hist := analogue.Historical
		for _, market := range analogue.Markets {
			spec, known := models.SpecFor(market.Market)
			if !known {
				continue
			}
			for _, comparison := range market.Outcomes {
				realized, evaluable := outcomeRealized(spec, comparison.Outcome, hist.FinalScore, hist.HalftimeScore)
				if !evaluable {
					continue
				}
				record(stats, market.Market, comparison.Outcome, realized)
			}
		}
	}
	return stats
}

func record(stats Stats, market models.MarketType, outcome string, realized bool) {
	if stats[market] == nil {
		stats[market] = make(map[string]OutcomeStat)
	}
	stat := stats[market][outcome]
	stat.Total++
	if realized {
		stat.Realized++
	}
	stats[market][outcome] = stat
}

// outcomeRealized resolves one outcome label against the recorded
// scores. The second return is false when the scores needed for this
// market are not available.
func outcomeRealized(spec models.MarketSpec, outcome string, final, halftime *models.Score) (bool, bool) {
	switch spec.Type {
	case models.MarketMatchResult:
		if final == nil {
			return false, false
		}
		return final.Result() == outcome, true

	case models.MarketHalftimeResult:
		if halftime == nil {
			return false, false
		}
		return halftime.Result() == outcome, true

	case models.MarketBothTeamsScore:
		if final == nil {
			return false, false
		}
		both := final.Home >= 1 && final.Away >= 1
		if outcome == models.OutcomeYes {
			return both, true
		}
		return !both, true

	case models.MarketOverUnder25:
		if final == nil {
			return false, false
		}
		return lineRealized(outcome, float64(final.Total()), spec.Line), true

	case models.MarketHalftimeOU15:
		if halftime == nil {
			return false, false
		}
		return lineRealized(outcome, float64(halftime.Total()), spec.Line), true

	case models.MarketHomeOverUnder15:
		if final == nil {
			return false, false
		}
		return lineRealized(outcome, float64(final.Home), spec.Line), true

	case models.MarketAwayOverUnder15:
		if final == nil {
			return false, false
		}
		return lineRealized(outcome, float64(final.Away), spec.Line), true

	case models.MarketTotalGoals:
		if final == nil {
			return false, false
		}
		return bucketRealized(outcome, final.Total())

	case models.MarketHalftimeFulltime:
		if final == nil || halftime == nil {
			return false, false
		}
		return halftime.Result()+"/"+final.Result() == outcome, true
	}

	return false, false
}

// lineRealized applies the strict over/under inequality. Integer goals
// never land exactly on a half line, so no tie policy exists.
func lineRealized(outcome string, goals, line float64) bool {
	if outcome == models.OutcomeOver {
		return goals > line
	}
	return goals < line
}

// bucketRealized checks a total-goals bucket label like "2-3" or "6+"
func bucketRealized(outcome string, total int) (bool, bool) {
	if strings.HasSuffix(outcome, "+") {
		min, err := strconv.Atoi(strings.TrimSuffix(outcome, "+"))
		if err != nil {
			return false, false
		}
		return total >= min, true
	}

	parts := strings.SplitN(outcome, "-", 2)
	if len(parts) != 2 {
		return false, false
	}
	low, err := strconv.Atoi(parts[0])
	if err != nil {
		return false, false
	}
	high, err := strconv.Atoi(parts[1])
	if err != nil {
		return false, false
	}
	return total >= low && total <= high, true
}
