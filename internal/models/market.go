package models

// MarketType identifies one betting category from the closed catalogue.
type MarketType string

// Market catalogue types
const (
	MarketMatchResult       MarketType = "match_result"
	MarketHalftimeResult    MarketType = "halftime_result"
	MarketBothTeamsScore    MarketType = "both_teams_score"
	MarketHalftimeFulltime  MarketType = "halftime_fulltime"
	MarketOverUnder25       MarketType = "over_under_2.5"
	MarketHalftimeOU15      MarketType = "halftime_over_under_1.5"
	MarketTotalGoals        MarketType = "total_goals"
	MarketHomeOverUnder15   MarketType = "home_over_under_1.5"
	MarketAwayOverUnder15   MarketType = "away_over_under_1.5"
)

// Outcome labels shared across markets
const (
	OutcomeHome  = "1"
	OutcomeDraw  = "X"
	OutcomeAway  = "2"
	OutcomeYes   = "Yes"
	OutcomeNo    = "No"
	OutcomeOver  = "Over"
	OutcomeUnder = "Under"
)

// OddsKey addresses one quoted price inside a match record.
type OddsKey struct {
	Market  MarketType
	Outcome string
}

// MarketSpec describes one catalogue entry: its outcome vocabulary,
// whether evaluating it needs the halftime score, the qualification
// quorum (0 means every quoted outcome must pass) and, for over/under
// markets, the goal line.
type MarketSpec struct {
	Type              MarketType
	Outcomes          []string
	HalftimeDependent bool
	MatchQuorum       int
	Line              float64
	FeedID            int
}

// Catalogue is the closed market table. Adding a market is a data
// change here, not a code change in the engine.
var Catalogue = []MarketSpec{
	{Type: MarketMatchResult, Outcomes: []string{OutcomeHome, OutcomeDraw, OutcomeAway}, FeedID: 1},
	{Type: MarketHalftimeResult, Outcomes: []string{OutcomeHome, OutcomeDraw, OutcomeAway}, HalftimeDependent: true, FeedID: 3},
	{Type: MarketBothTeamsScore, Outcomes: []string{OutcomeYes, OutcomeNo}, FeedID: 6},
	{Type: MarketHalftimeFulltime, Outcomes: []string{"1/1", "1/X", "1/2", "X/1", "X/X", "X/2", "2/1", "2/X", "2/2"}, HalftimeDependent: true, MatchQuorum: 3, FeedID: 8},
	{Type: MarketOverUnder25, Outcomes: []string{OutcomeOver, OutcomeUnder}, Line: 2.5, FeedID: 10},
	{Type: MarketHalftimeOU15, Outcomes: []string{OutcomeOver, OutcomeUnder}, HalftimeDependent: true, Line: 1.5, FeedID: 11},
	{Type: MarketTotalGoals, Outcomes: []string{"0-1", "2-3", "4-5", "6+"}, FeedID: 13},
	{Type: MarketHomeOverUnder15, Outcomes: []string{OutcomeOver, OutcomeUnder}, Line: 1.5, FeedID: 14},
	{Type: MarketAwayOverUnder15, Outcomes: []string{OutcomeOver, OutcomeUnder}, Line: 1.5, FeedID: 15},
}

// SpecFor looks up a catalogue entry by market type
func SpecFor(t MarketType) (MarketSpec, bool) {
	for _, spec := range Catalogue {
		if spec.Type == t {
			return spec, true
		}
	}
	return MarketSpec{}, false
}

// SpecForFeedID looks up a catalogue entry by the feed's market id
func SpecForFeedID(id int) (MarketSpec, bool) {
	for _, spec := range Catalogue {
		if spec.FeedID == id {
			return spec, true
		}
	}
	return MarketSpec{}, false
}

// HasOutcome reports whether the label belongs to this market's vocabulary
func (s MarketSpec) HasOutcome(outcome string) bool {
	for _, label := range s.Outcomes {
		if label == outcome {
			return true
		}
	}
	return false
}
