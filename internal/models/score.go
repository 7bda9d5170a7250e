package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ScoreSentinel is the external-format placeholder for an unknown score.
// It never appears in memory; the store writes it for nil scores.
const ScoreSentinel = "- - -"

// Score holds the goal pair of one period of play.
type Score struct {
	Home int `json:"home" validate:"gte=0"`
	Away int `json:"away" validate:"gte=0"`
}

// Total returns the combined goal count
func (s Score) Total() int {
	return s.Home + s.Away
}

// String formats the score in the feed's "H - A" convention
func (s Score) String() string {
	return fmt.Sprintf("%d - %d", s.Home, s.Away)
}

// Result reduces the score to a 1/X/2 result letter
func (s Score) Result() string {
	switch {
	case s.Home > s.Away:
		return OutcomeHome
	case s.Home == s.Away:
		return OutcomeDraw
	default:
		return OutcomeAway
	}
}

// ParseScore parses an "H - A" score string into a Score. The sentinel
// and empty strings parse to nil without error; anything else that does
// not split into two non-negative integers is an ErrScoreUnparsable.
func ParseScore(raw string) (*Score, error) {
	if raw == "" || raw == ScoreSentinel || strings.Contains(raw, "None") {
		return nil, nil
	}

	parts := strings.Split(strings.ReplaceAll(raw, " ", ""), "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrScoreUnparsable, raw)
	}

	home, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrScoreUnparsable, raw)
	}
	away, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrScoreUnparsable, raw)
	}
	if home < 0 || away < 0 {
		return nil, fmt.Errorf("%w: %q", ErrScoreUnparsable, raw)
	}

	return &Score{Home: home, Away: away}, nil
}
