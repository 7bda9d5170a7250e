package models

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MatchStatus collapses the feed's richer status codes to the two states
// that matter downstream. The numeric values are the feed's own codes.
type MatchStatus int

const (
	StatusScheduled MatchStatus = 1
	StatusFinished  MatchStatus = 3
)

// Match represents one fixture on one calendar day with its quoted odds
type Match struct {
	ID            string      `validate:"required"`
	UUID          *uuid.UUID  // stable cross-day identifier, optional
	League        string      `validate:"required"`
	HomeTeam      string      `validate:"required"`
	AwayTeam      string      `validate:"required"`
	Date          string      `validate:"required,datetime=2006-01-02"`
	KickoffTime   string      // local wall clock "HH:MM"
	Status        MatchStatus `validate:"oneof=1 3"`
	FinalScore    *Score
	HalftimeScore *Score
	Odds          map[OddsKey]float64
}

// IsUpcoming checks if the match hasn't been played yet
func (m *Match) IsUpcoming() bool {
	return m.Status == StatusScheduled
}

// IsFinished checks if the feed marked the match as played
func (m *Match) IsFinished() bool {
	return m.Status == StatusFinished
}

// Odd returns the quoted price for a market outcome, if present
func (m *Match) Odd(market MarketType, outcome string) (float64, bool) {
	odd, ok := m.Odds[OddsKey{Market: market, Outcome: outcome}]
	return odd, ok
}

// SetOdd stores a price; zero and negative values are dropped, the
// absence of a quote is never represented as 0.
func (m *Match) SetOdd(market MarketType, outcome string, odd float64) {
	if odd <= 0 {
		return
	}
	if m.Odds == nil {
		m.Odds = make(map[OddsKey]float64)
	}
	m.Odds[OddsKey{Market: market, Outcome: outcome}] = odd
}

// NormalizeKickoff truncates the kickoff wall clock to the canonical
// 5-character "HH:MM" form, defaulting when empty
func (m *Match) NormalizeKickoff() {
	if m.KickoffTime == "" {
		m.KickoffTime = "00:00"
		return
	}
	if len(m.KickoffTime) > 5 {
		m.KickoffTime = m.KickoffTime[:5]
	}
}

var matchValidator = validator.New()

// Validate checks the record's structural invariants
func (m *Match) Validate() error {
	return matchValidator.Struct(m)
}
