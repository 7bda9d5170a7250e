// Package store owns the on-disk historical match archive.
package store

import (
	"sort"
	"time"

	"github.com/yourusername/odds-analyzer/internal/models"
)

// Archive is the day-partitioned collection of match records. It is
// mutated only through the Store's merge operation.
type Archive struct {
	Days       map[string][]*models.Match
	LastUpdate *time.Time
}

// NewArchive creates an empty archive
func NewArchive() *Archive {
	return &Archive{Days: make(map[string][]*models.Match)}
}

// Day returns the records stored for one calendar day
func (a *Archive) Day(day string) []*models.Match {
	return a.Days[day]
}

// MatchesBetween flattens the archive into one sequence covering the
// inclusive day range, in ascending day order.
func (a *Archive) MatchesBetween(start, end string) []*models.Match {
	days := make([]string, 0, len(a.Days))
	for day := range a.Days {
		if day >= start && day <= end {
			days = append(days, day)
		}
	}
	sort.Strings(days)

	var matches []*models.Match
	for _, day := range days {
		matches = append(matches, a.Days[day]...)
	}
	return matches
}

// TotalMatches counts records across all days
func (a *Archive) TotalMatches() int {
	total := 0
	for _, day := range a.Days {
		total += len(day)
	}
	return total
}
