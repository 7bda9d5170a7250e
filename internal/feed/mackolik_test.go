package feed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-analyzer/internal/models"
)

const bulletinPayload = `{
    "data": {
        "soccer": [
            {
                "title": "Premier League",
                "matches": [
                    {
                        "id": 1001,
                        "uuid": "7f6c1c6e-0f34-4d86-9d7c-1df0de9f2a11",
                        "team_A": "Arsenal",
                        "team_B": "Chelsea",
                        "time": "16:30",
                        "status": 3,
                        "markets": [
                            {
                                "i": 1,
                                "o": [{"l": [
                                    {"n": "1", "v": 1.85},
                                    {"n": "X", "v": 3.60},
                                    {"n": "2", "v": 4.20}
                                ]}]
                            },
                            {
                                "i": 6,
                                "o": [{"l": [
                                    {"n": "Var", "v": 1.70},
                                    {"n": "Yok", "v": 2.10}
                                ]}]
                            },
                            {
                                "i": 10,
                                "o": [{"l": [
                                    {"n": "Üst", "v": 1.90},
                                    {"n": "Alt", "v": 1.92}
                                ]}]
                            },
                            {
                                "i": 99,
                                "o": [{"l": [{"n": "1", "v": 1.10}]}]
                            }
                        ]
                    },
                    {
                        "id": 1002,
                        "team_A": "Villa",
                        "team_B": "Wolves",
                        "time": "14:00",
                        "status": 5,
                        "markets": []
                    },
                    {
                        "id": 1003,
                        "team_A": "Leeds",
                        "team_B": "Everton",
                        "time": "",
                        "status": 1,
                        "markets": []
                    }
                ]
            }
        ]
    }
}`

const detailsPayload = `{
    "data": {
        "areas": [
            {
                "competitions": [
                    {
                        "matches": [
                            {
                                "id": 1001,
                                "status": "Played",
                                "hts_A": 1,
                                "hts_B": 0,
                                "fts_A": 2,
                                "fts_B": 1,
                                "match_time": "16:30"
                            },
                            {
                                "id": 1003,
                                "status": "Scheduled"
                            }
                        ]
                    }
                ]
            }
        ]
    }
}`

func testClient(t *testing.T, handler http.Handler) *MackolikClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.MaxRetries = 0
	httpCfg.RateLimit = 1000

	return NewMackolikClient(NewRateLimitedHTTPClient(httpCfg, logger), Config{
		WebBaseURL:     server.URL,
		APIBaseURL:     server.URL,
		Application:    "test-app",
		UserAgent:      "test-agent",
		TimezoneOffset: 3,
		TokenTTL:       time.Minute,
		Enabled:        true,
	}, logger)
}

func feedMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ajax/middleware/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"token": "abc123"}}`))
	})
	mux.HandleFunc("/betting-service/bulletin/sport/1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RequestToken") != "abc123" {
			t.Errorf("missing request token header")
		}
		if r.Header.Get("X-Authorization") != "token true" {
			t.Errorf("missing authorization header")
		}
		w.Write([]byte(bulletinPayload))
	})
	mux.HandleFunc("/api/matches/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailsPayload))
	})
	return mux
}

// TestGetToken tests token retrieval and caching
func TestGetToken(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/ajax/middleware/token", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"data": {"token": "abc123"}}`))
	})
	client := testClient(t, mux)

	for i := 0; i < 3; i++ {
		token, err := client.GetToken(context.Background())
		if err != nil {
			t.Fatalf("token request failed: %v", err)
		}
		if token != "abc123" {
			t.Errorf("expected token abc123, got %q", token)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call with caching, got %d", calls)
	}
}

// TestGetTokenFailure tests the auth error classification
func TestGetTokenFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ajax/middleware/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	client := testClient(t, mux)

	_, err := client.GetToken(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuthError(err) {
		t.Errorf("expected an auth error, got %v", err)
	}
}

// TestMatchesForDate tests the merged bulletin+details day view
func TestMatchesForDate(t *testing.T) {
	client := testClient(t, feedMux(t))

	matches, err := client.MatchesForDate(context.Background(), "abc123", "2026-03-01")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	// The postponed fixture (status 5) must be gone
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	var finished *models.Match
	for _, m := range matches {
		if m.ID == "1001" {
			finished = m
		}
	}
	if finished == nil {
		t.Fatal("expected match 1001 in the result")
	}

	if !finished.IsFinished() {
		t.Error("played match must be marked finished")
	}
	if finished.FinalScore == nil || *finished.FinalScore != (models.Score{Home: 2, Away: 1}) {
		t.Errorf("expected final score 2-1, got %v", finished.FinalScore)
	}
	if finished.HalftimeScore == nil || *finished.HalftimeScore != (models.Score{Home: 1, Away: 0}) {
		t.Errorf("expected halftime score 1-0, got %v", finished.HalftimeScore)
	}
	if finished.UUID == nil {
		t.Error("expected uuid to be parsed")
	}

	// UTC 16:30 with +3 offset
	if finished.KickoffTime != "19:30" {
		t.Errorf("expected kickoff 19:30, got %q", finished.KickoffTime)
	}

	// Localized outcome names map onto the catalogue vocabulary
	if odd, ok := finished.Odd(models.MarketBothTeamsScore, models.OutcomeYes); !ok || odd != 1.70 {
		t.Errorf("expected BTTS Yes 1.70, got %v (present=%v)", odd, ok)
	}
	if odd, ok := finished.Odd(models.MarketOverUnder25, models.OutcomeOver); !ok || odd != 1.90 {
		t.Errorf("expected O/U Over 1.90, got %v (present=%v)", odd, ok)
	}
	if odd, ok := finished.Odd(models.MarketMatchResult, models.OutcomeHome); !ok || odd != 1.85 {
		t.Errorf("expected 1 at 1.85, got %v (present=%v)", odd, ok)
	}

	// Unknown feed market 99 is dropped
	for key := range finished.Odds {
		if _, ok := models.SpecFor(key.Market); !ok {
			t.Errorf("unknown market stored: %v", key)
		}
	}
}

// TestMatchesForDateKickoffFallback tests the 00:00 default
func TestMatchesForDateKickoffFallback(t *testing.T) {
	client := testClient(t, feedMux(t))

	matches, err := client.MatchesForDate(context.Background(), "abc123", "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range matches {
		if m.ID == "1003" && m.KickoffTime != "00:00" {
			t.Errorf("expected fallback kickoff 00:00, got %q", m.KickoffTime)
		}
	}
}

// TestMatchesForDateSortOrder tests (league, kickoff) ordering
func TestMatchesForDateSortOrder(t *testing.T) {
	client := testClient(t, feedMux(t))

	matches, err := client.MatchesForDate(context.Background(), "abc123", "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		if prev.League == cur.League && prev.KickoffTime > cur.KickoffTime {
			t.Errorf("matches out of order: %s before %s", prev.KickoffTime, cur.KickoffTime)
		}
	}
}

// TestMatchesForDateBulletinOnly tests that a failing details call
// degrades to odds-only data instead of failing the day
func TestMatchesForDateBulletinOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/betting-service/bulletin/sport/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bulletinPayload))
	})
	mux.HandleFunc("/api/matches/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := testClient(t, mux)

	matches, err := client.MatchesForDate(context.Background(), "abc123", "2026-03-01")
	if err != nil {
		t.Fatalf("expected bulletin-only fallback, got %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.FinalScore != nil {
			t.Error("no scores expected without the details call")
		}
	}
	// The finished flag still comes from the bulletin status
	for _, m := range matches {
		if m.ID == "1001" && !m.IsFinished() {
			t.Error("bulletin status 3 must mark the match finished")
		}
	}
}
