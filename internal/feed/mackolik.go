package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-analyzer/internal/metrics"
	"github.com/yourusername/odds-analyzer/internal/models"
)

const (
	sourceName    = "mackolik"
	tokenCacheKey = "feed_token"

	bulletinStatusFinished  = 3
	bulletinStatusPostponed = 5
	detailStatusPlayed      = "Played"
	detailStatusPostponed   = "Postponed"
)

// Config holds the Mackolik feed endpoints and fetch behavior
type Config struct {
	WebBaseURL     string // token endpoint host
	APIBaseURL     string // bulletin + details host
	Application    string // application id sent on every call
	UserAgent      string
	TimezoneOffset int // hours added to the feed's UTC kickoff times
	TokenTTL       time.Duration
	Enabled        bool
}

// MackolikClient implements Client against the Mackolik feed. One day's
// data is split over two upstream calls: the betting bulletin carries
// the odds, the match details call carries authoritative status and
// scores. Records from either call are always partial.
type MackolikClient struct {
	httpClient *RateLimitedHTTPClient
	cfg        Config
	tokens     *cache.Cache
	logger     *logrus.Logger
}

// NewMackolikClient creates a new Mackolik feed client
func NewMackolikClient(httpClient *RateLimitedHTTPClient, cfg Config, logger *logrus.Logger) *MackolikClient {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MackolikClient{
		httpClient: httpClient,
		cfg:        cfg,
		tokens:     cache.New(ttl, ttl*2),
		logger:     logger,
	}
}

// Name returns the feed provider name
func (c *MackolikClient) Name() string {
	return sourceName
}

// IsEnabled returns whether this provider is enabled
func (c *MackolikClient) IsEnabled() bool {
	return c.cfg.Enabled
}

// Close drops cached tokens and releases the HTTP client
func (c *MackolikClient) Close() error {
	c.tokens.Flush()
	return c.httpClient.Close()
}

type tokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// GetToken retrieves (and caches) an access token for the feed APIs
func (c *MackolikClient) GetToken(ctx context.Context) (string, error) {
	if cached, found := c.tokens.Get(tokenCacheKey); found {
		return cached.(string), nil
	}

	url := fmt.Sprintf("%s/ajax/middleware/token", c.cfg.WebBaseURL)
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return "", NewFeedError(sourceName, ErrCodeAuthenticationFailed, "token request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewFeedError(sourceName, ErrCodeAuthenticationFailed, fmt.Sprintf("token endpoint returned status %d", resp.StatusCode), nil)
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", NewFeedError(sourceName, ErrCodeAuthenticationFailed, "failed to parse token response", err)
	}
	if parsed.Data.Token == "" {
		return "", NewFeedError(sourceName, ErrCodeAuthenticationFailed, "token missing from response", nil)
	}

	c.tokens.SetDefault(tokenCacheKey, parsed.Data.Token)
	return parsed.Data.Token, nil
}

// Bulletin (odds) response shapes

type bulletinResponse struct {
	Data struct {
		Soccer []bulletinLeague `json:"soccer"`
	} `json:"data"`
}

type bulletinLeague struct {
	Title   string          `json:"title"`
	Matches []bulletinMatch `json:"matches"`
}

type bulletinMatch struct {
	ID      json.Number      `json:"id"`
	UUID    string           `json:"uuid"`
	TeamA   string           `json:"team_A"`
	TeamB   string           `json:"team_B"`
	Time    string           `json:"time"`
	Status  int              `json:"status"`
	Markets []bulletinMarket `json:"markets"`
}

type bulletinMarket struct {
	ID     int                 `json:"i"`
	Groups []bulletinOddsGroup `json:"o"`
}

type bulletinOddsGroup struct {
	Lines []bulletinOutcome `json:"l"`
}

type bulletinOutcome struct {
	Name  string          `json:"n"`
	Value decimal.Decimal `json:"v"`
}

// Details (status/score) response shapes

type detailsResponse struct {
	Data struct {
		Areas []detailsArea `json:"areas"`
	} `json:"data"`
}

type detailsArea struct {
	Competitions []detailsCompetition `json:"competitions"`
}

type detailsCompetition struct {
	Matches []detailsMatch `json:"matches"`
}

type detailsMatch struct {
	ID        json.Number `json:"id"`
	Status    string      `json:"status"`
	HTSHome   *int        `json:"hts_A"`
	HTSAway   *int        `json:"hts_B"`
	FTSHome   *int        `json:"fts_A"`
	FTSAway   *int        `json:"fts_B"`
	MatchTime string      `json:"match_time"`
	Time      string      `json:"time"`
}

// MatchesForDate retrieves one day's matches with odds, status and
// scores merged from the two upstream calls. Postponed fixtures are
// dropped here so nothing downstream has to know about them.
func (c *MackolikClient) MatchesForDate(ctx context.Context, token, date string) ([]*models.Match, error) {
	if !c.cfg.Enabled {
		return nil, NewFeedError(sourceName, ErrCodeNetworkError, "feed provider is disabled", nil)
	}

	bulletin, err := c.fetchBulletin(ctx, token, date)
	if err != nil {
		return nil, err
	}

	details, err := c.fetchDetails(ctx, token, date)
	if err != nil {
		// Odds alone are still worth having; scores arrive on a later run
		c.logger.WithError(err).WithField("day", date).Warn("Match details call failed, continuing with bulletin only")
		details = map[string]detailsMatch{}
	}

	var matches []*models.Match
	for _, league := range bulletin.Data.Soccer {
		for _, raw := range league.Matches {
			if raw.Status == bulletinStatusPostponed {
				continue
			}
			detail, hasDetail := details[raw.ID.String()]
			if hasDetail && detail.Status == detailStatusPostponed {
				continue
			}
			match := c.buildMatch(league.Title, date, raw, detail, hasDetail)
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].League != matches[j].League {
			return matches[i].League < matches[j].League
		}
		return matches[i].KickoffTime < matches[j].KickoffTime
	})

	return matches, nil
}

func (c *MackolikClient) fetchBulletin(ctx context.Context, token, date string) (*bulletinResponse, error) {
	url := fmt.Sprintf("%s/betting-service/bulletin/sport/1?date=%s&tz=%d&application=%s",
		c.cfg.APIBaseURL, date, c.cfg.TimezoneOffset, c.cfg.Application)

	body, err := c.authorizedGet(ctx, token, url)
	if err != nil {
		return nil, err
	}

	var parsed bulletinResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewFeedError(sourceName, ErrCodeInvalidData, "failed to parse bulletin response", err)
	}
	return &parsed, nil
}

func (c *MackolikClient) fetchDetails(ctx context.Context, token, date string) (map[string]detailsMatch, error) {
	url := fmt.Sprintf("%s/api/matches/?add_playing=1&extended_period=1&date=%s&tz=%d.0&application=%s",
		c.cfg.APIBaseURL, date, c.cfg.TimezoneOffset, c.cfg.Application)

	body, err := c.authorizedGet(ctx, token, url)
	if err != nil {
		return nil, err
	}

	var parsed detailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewFeedError(sourceName, ErrCodeInvalidData, "failed to parse details response", err)
	}

	details := make(map[string]detailsMatch)
	for _, area := range parsed.Data.Areas {
		for _, competition := range area.Competitions {
			for _, match := range competition.Matches {
				if match.ID.String() != "" {
					details[match.ID.String()] = match
				}
			}
		}
	}
	return details, nil
}

func (c *MackolikClient) authorizedGet(ctx context.Context, token, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewFeedError(sourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("X-Authorization", "token true")
	req.Header.Set("X-RequestToken", token)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordFeedRequest("error")
		return nil, NewFeedError(sourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		metrics.RecordFeedRequest("success")
	} else {
		metrics.RecordFeedRequest(fmt.Sprintf("http_%d", resp.StatusCode))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewFeedError(sourceName, ErrCodeAuthenticationFailed, "token rejected", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewFeedError(sourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewFeedError(sourceName, ErrCodeNotFound, "no data for requested day", nil)
	case resp.StatusCode != http.StatusOK:
		return nil, NewFeedError(sourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewFeedError(sourceName, ErrCodeNetworkError, "failed to read response", err)
	}
	return body, nil
}

func (c *MackolikClient) buildMatch(league, date string, raw bulletinMatch, detail detailsMatch, hasDetail bool) *models.Match {
	match := &models.Match{
		ID:       raw.ID.String(),
		League:   league,
		HomeTeam: raw.TeamA,
		AwayTeam: raw.TeamB,
		Date:     date,
		Status:   models.StatusScheduled,
	}
	match.UUID = parseUUID(raw.UUID)

	kickoffSource := raw.Time
	if hasDetail {
		if detail.MatchTime != "" {
			kickoffSource = detail.MatchTime
		} else if detail.Time != "" {
			kickoffSource = detail.Time
		}
	}
	match.KickoffTime = localKickoff(kickoffSource, c.cfg.TimezoneOffset)

	// Status and scores come only from the details call; the bulletin's
	// finished flag is accepted as a fallback.
	if hasDetail {
		if detail.Status == detailStatusPlayed || raw.Status == bulletinStatusFinished {
			match.Status = models.StatusFinished
		}
		if detail.FTSHome != nil && detail.FTSAway != nil {
			match.FinalScore = &models.Score{Home: *detail.FTSHome, Away: *detail.FTSAway}
		}
		if detail.HTSHome != nil && detail.HTSAway != nil {
			match.HalftimeScore = &models.Score{Home: *detail.HTSHome, Away: *detail.HTSAway}
		}
	} else if raw.Status == bulletinStatusFinished {
		match.Status = models.StatusFinished
	}

	for _, market := range raw.Markets {
		spec, known := models.SpecForFeedID(market.ID)
		if !known || len(market.Groups) == 0 {
			continue
		}
		for _, outcome := range market.Groups[0].Lines {
			label, ok := canonicalOutcome(spec, outcome.Name)
			if !ok {
				continue
			}
			odd := outcome.Value.InexactFloat64()
			match.SetOdd(spec.Type, label, odd)
		}
	}

	return match
}

// feedOutcomeLabels maps the feed's localized outcome names onto the
// catalogue vocabulary; labels already canonical pass through.
var feedOutcomeLabels = map[string]string{
	"Var": models.OutcomeYes,
	"Yok": models.OutcomeNo,
	"Üst": models.OutcomeOver,
	"Alt": models.OutcomeUnder,
}

func canonicalOutcome(spec models.MarketSpec, name string) (string, bool) {
	if mapped, ok := feedOutcomeLabels[name]; ok {
		name = mapped
	}
	if !spec.HasOutcome(name) {
		return "", false
	}
	return name, true
}

// localKickoff converts the feed's UTC "HH:MM" to the local wall clock.
// Anything unparsable becomes the original's "00:00" fallback.
func localKickoff(raw string, offsetHours int) string {
	if raw == "" {
		return "00:00"
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		if len(raw) > 5 {
			// some payloads append seconds
			if parsed, err = time.Parse("15:04", raw[:5]); err != nil {
				return "00:00"
			}
		} else {
			return "00:00"
		}
	}
	local := parsed.Add(time.Duration(offsetHours) * time.Hour)
	return local.Format("15:04")
}

func parseUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
