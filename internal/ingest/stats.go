package ingest

import (
	"fmt"
	"sync"
	"time"
)

// Stats tracks statistics about an archive refresh run
type Stats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	RequestedDays    int
	ProcessedDays    int
	Inserted         int
	Updated          int
	ValidationErrors int
	Errors           int
}

// NewStats creates a new statistics tracker
func NewStats() *Stats {
	return &Stats{
		StartTime: time.Now(),
	}
}

// Reset resets all statistics
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.StartTime = time.Now()
	s.Duration = 0
	s.RequestedDays = 0
	s.ProcessedDays = 0
	s.Inserted = 0
	s.Updated = 0
	s.ValidationErrors = 0
	s.Errors = 0
}

// RecordDay records one merged day and its insert/update counts
func (s *Stats) RecordDay(inserted, updated int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProcessedDays++
	s.Inserted += inserted
	s.Updated += updated
}

// RecordError increments the failed-day count
func (s *Stats) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors++
}

// RecordValidationError increments the dropped-record count
func (s *Stats) RecordValidationError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ValidationErrors++
}

// String returns a formatted string representation of the run
func (s *Stats) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	successRate := float64(0)
	if s.RequestedDays > 0 {
		successRate = float64(s.ProcessedDays) / float64(s.RequestedDays) * 100
	}

	return fmt.Sprintf(
		"IngestStats{Days=%d/%d (%.1f%%), Inserted=%d, Updated=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		s.ProcessedDays,
		s.RequestedDays,
		successRate,
		s.Inserted,
		s.Updated,
		s.ValidationErrors,
		s.Errors,
		s.Duration,
	)
}
