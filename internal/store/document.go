package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/yourusername/odds-analyzer/internal/models"
)

// archiveDocument is the serialized archive file shape. Score absence is
// the "- - -" sentinel here and only here; in memory scores are typed
// optionals.
type archiveDocument struct {
	Matches    map[string][]matchDocument `json:"matches"`
	LastUpdate *string                    `json:"last_update"`
}

type matchDocument struct {
	ID            string             `json:"id"`
	UUID          string             `json:"uuid,omitempty"`
	League        string             `json:"league"`
	HomeTeam      string             `json:"home_team"`
	AwayTeam      string             `json:"away_team"`
	Date          string             `json:"date"`
	KickoffTime   string             `json:"kickoff_time"`
	Status        int                `json:"status"`
	FinalScore    string             `json:"final_score"`
	HalftimeScore string             `json:"halftime_score"`
	HomeGoals     *int               `json:"home_goals,omitempty"`
	AwayGoals     *int               `json:"away_goals,omitempty"`
	HTHomeGoals   *int               `json:"ht_home_goals,omitempty"`
	HTAwayGoals   *int               `json:"ht_away_goals,omitempty"`
	Odds          map[string]float64 `json:"odds,omitempty"`
}

func encodeMatch(m *models.Match) matchDocument {
	doc := matchDocument{
		ID:            m.ID,
		League:        m.League,
		HomeTeam:      m.HomeTeam,
		AwayTeam:      m.AwayTeam,
		Date:          m.Date,
		KickoffTime:   m.KickoffTime,
		Status:        int(m.Status),
		FinalScore:    models.ScoreSentinel,
		HalftimeScore: models.ScoreSentinel,
	}
	if m.UUID != nil {
		doc.UUID = m.UUID.String()
	}
	if m.FinalScore != nil {
		doc.FinalScore = m.FinalScore.String()
		doc.HomeGoals = intPtr(m.FinalScore.Home)
		doc.AwayGoals = intPtr(m.FinalScore.Away)
	}
	if m.HalftimeScore != nil {
		doc.HalftimeScore = m.HalftimeScore.String()
		doc.HTHomeGoals = intPtr(m.HalftimeScore.Home)
		doc.HTAwayGoals = intPtr(m.HalftimeScore.Away)
	}
	if len(m.Odds) > 0 {
		doc.Odds = make(map[string]float64, len(m.Odds))
		for key, odd := range m.Odds {
			doc.Odds[flattenOddsKey(key)] = odd
		}
	}
	return doc
}

func decodeMatch(doc matchDocument) *models.Match {
	m := &models.Match{
		ID:          doc.ID,
		League:      doc.League,
		HomeTeam:    doc.HomeTeam,
		AwayTeam:    doc.AwayTeam,
		Date:        doc.Date,
		KickoffTime: doc.KickoffTime,
		Status:      models.MatchStatus(doc.Status),
	}
	if doc.UUID != "" {
		if id, err := uuid.Parse(doc.UUID); err == nil {
			m.UUID = &id
		}
	}
	m.FinalScore = decodeScore(doc.FinalScore, doc.HomeGoals, doc.AwayGoals)
	m.HalftimeScore = decodeScore(doc.HalftimeScore, doc.HTHomeGoals, doc.HTAwayGoals)

	for flat, odd := range doc.Odds {
		if odd <= 0 {
			continue
		}
		key, ok := splitOddsKey(flat)
		if !ok {
			continue
		}
		m.SetOdd(key.Market, key.Outcome, odd)
	}
	m.NormalizeKickoff()
	return m
}

// decodeScore prefers the composed score string; legacy documents that
// carry only the raw goal components are reconstituted from them.
func decodeScore(raw string, home, away *int) *models.Score {
	if score, err := models.ParseScore(raw); err == nil && score != nil {
		return score
	}
	if home != nil && away != nil && *home >= 0 && *away >= 0 {
		return &models.Score{Home: *home, Away: *away}
	}
	return nil
}

// flattenOddsKey composes the archive's "<market>_<outcome>" odds field
func flattenOddsKey(key models.OddsKey) string {
	return string(key.Market) + "_" + key.Outcome
}

// splitOddsKey inverts flattenOddsKey. Outcome labels never contain an
// underscore, so the split is at the last one.
func splitOddsKey(flat string) (models.OddsKey, bool) {
	idx := strings.LastIndex(flat, "_")
	if idx <= 0 || idx == len(flat)-1 {
		return models.OddsKey{}, false
	}
	market := models.MarketType(flat[:idx])
	outcome := flat[idx+1:]
	spec, ok := models.SpecFor(market)
	if !ok || !spec.HasOutcome(outcome) {
		return models.OddsKey{}, false
	}
	return models.OddsKey{Market: market, Outcome: outcome}, true
}

// normalizeDocument is the pre-save pass: kickoff times are forced to
// the 5-character form and sentinel scores are reconstituted from raw
// goal components when those are independently present.
func normalizeDocument(doc *archiveDocument) {
	for day := range doc.Matches {
		for i := range doc.Matches[day] {
			record := &doc.Matches[day][i]
			if record.KickoffTime == "" {
				record.KickoffTime = "00:00"
			} else if len(record.KickoffTime) > 5 {
				record.KickoffTime = record.KickoffTime[:5]
			}
			if record.FinalScore == models.ScoreSentinel && record.HomeGoals != nil && record.AwayGoals != nil {
				record.FinalScore = (&models.Score{Home: *record.HomeGoals, Away: *record.AwayGoals}).String()
			}
			if record.HalftimeScore == models.ScoreSentinel && record.HTHomeGoals != nil && record.HTAwayGoals != nil {
				record.HalftimeScore = (&models.Score{Home: *record.HTHomeGoals, Away: *record.HTAwayGoals}).String()
			}
		}
	}
}

func intPtr(v int) *int {
	return &v
}
