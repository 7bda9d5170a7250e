package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-analyzer/internal/models"
)

const lastUpdateLayout = "2006-01-02 15:04:05"

// MergeResult reports what one day's merge changed
type MergeResult struct {
	Inserted int
	Updated  int
}

// Store reads, merges and persists the historical archive. The archive
// file is the only persistence in the system.
type Store struct {
	path   string
	logger *logrus.Logger
}

// NewStore creates a store bound to the archive file path
func NewStore(path string, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the archive file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted archive. A missing or unparsable file yields
// an empty archive, never an error: the caller always gets something to
// merge into.
func (s *Store) Load() *Archive {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Failed to read archive file, starting empty")
		}
		return NewArchive()
	}

	var doc archiveDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.WithError(err).Warn("Archive file is corrupt, starting empty")
		return NewArchive()
	}

	archive := NewArchive()
	for day, records := range doc.Matches {
		for _, record := range records {
			if record.ID == "" {
				s.logger.WithField("day", day).Warn("Dropping archived record without id")
				continue
			}
			archive.Days[day] = append(archive.Days[day], decodeMatch(record))
		}
	}
	if doc.LastUpdate != nil {
		if ts, err := time.Parse(lastUpdateLayout, *doc.LastUpdate); err == nil {
			archive.LastUpdate = &ts
		}
	}
	return archive
}

// MergeDay upserts one day's freshly fetched records into the archive.
// Records already present by id get a field-level merge; new ids are
// appended. Existing fields are never deleted.
func (s *Store) MergeDay(archive *Archive, day string, incoming []*models.Match) MergeResult {
	result := MergeResult{}
	existing := make(map[string]*models.Match, len(archive.Days[day]))
	for _, m := range archive.Days[day] {
		existing[m.ID] = m
	}

	for _, record := range incoming {
		if record == nil || record.ID == "" {
			continue
		}
		current, ok := existing[record.ID]
		if !ok {
			record.NormalizeKickoff()
			archive.Days[day] = append(archive.Days[day], record)
			existing[record.ID] = record
			result.Inserted++
			continue
		}
		if mergeMatch(current, record) {
			result.Updated++
		}
	}
	return result
}

// mergeMatch applies the non-destructive field overlay and reports
// whether anything actually changed.
func mergeMatch(existing, incoming *models.Match) bool {
	updated := false

	if incoming.Status != 0 && incoming.Status != existing.Status {
		existing.Status = incoming.Status
		updated = true
	}
	if incoming.Date != "" && incoming.Date != existing.Date {
		existing.Date = incoming.Date
		updated = true
	}
	if incoming.KickoffTime != "" {
		kickoff := incoming.KickoffTime
		if len(kickoff) > 5 {
			kickoff = kickoff[:5]
		}
		if kickoff != existing.KickoffTime {
			existing.KickoffTime = kickoff
			updated = true
		}
	}

	// Scores only move as complete pairs; a half-written pair from one
	// of the feed's two calls must never overwrite a stored one.
	if incoming.FinalScore != nil && !scoresEqual(existing.FinalScore, incoming.FinalScore) {
		score := *incoming.FinalScore
		existing.FinalScore = &score
		updated = true
	}
	if incoming.HalftimeScore != nil && !scoresEqual(existing.HalftimeScore, incoming.HalftimeScore) {
		score := *incoming.HalftimeScore
		existing.HalftimeScore = &score
		updated = true
	}

	for key, odd := range incoming.Odds {
		if odd <= 0 {
			continue
		}
		if stored, ok := existing.Odds[key]; !ok || stored != odd {
			existing.SetOdd(key.Market, key.Outcome, odd)
			updated = true
		}
	}

	return updated
}

func scoresEqual(a, b *models.Score) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Save normalizes and atomically persists the archive. A failed save is
// logged and returned but must not bring down the caller.
func (s *Store) Save(archive *Archive) error {
	doc := archiveDocument{Matches: make(map[string][]matchDocument, len(archive.Days))}
	for day, records := range archive.Days {
		encoded := make([]matchDocument, 0, len(records))
		for _, record := range records {
			encoded = append(encoded, encodeMatch(record))
		}
		doc.Matches[day] = encoded
	}
	if archive.LastUpdate != nil {
		stamp := archive.LastUpdate.UTC().Format(lastUpdateLayout)
		doc.LastUpdate = &stamp
	}
	normalizeDocument(&doc)

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode archive")
		return fmt.Errorf("failed to encode archive: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.WithError(err).Error("Failed to create archive directory")
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Temp file + rename keeps a crashed save from truncating the archive
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.WithError(err).Error("Failed to write archive")
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.WithError(err).Error("Failed to replace archive file")
		return fmt.Errorf("failed to replace archive file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"days":    len(archive.Days),
		"matches": archive.TotalMatches(),
	}).Debug("Archive saved")
	return nil
}
