// Package feed talks to the remote odds/results provider.
package feed

import (
	"context"
	"errors"

	"github.com/yourusername/odds-analyzer/internal/models"
)

// Client defines the interface for fetching match data from the feed
type Client interface {
	// GetToken retrieves an access token for the feed APIs
	GetToken(ctx context.Context) (string, error)

	// MatchesForDate retrieves all matches for one calendar day, already
	// annotated with status, scores when available, and odds keyed by
	// market/outcome
	MatchesForDate(ctx context.Context, token, date string) ([]*models.Match, error)

	// Name returns the name of the feed provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool
}

// FeedError represents errors from feed operations
type FeedError struct {
	Source  string // provider name
	Code    string // error code (e.g. "authentication_failed")
	Message string
	Err     error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// NewFeedError creates a new feed error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{Source: source, Code: code, Message: message, Err: err}
}

// IsAuthError reports whether the error is a token/authentication
// failure, the one failure class that aborts a whole ingestion run.
func IsAuthError(err error) bool {
	var feedErr FeedError
	if errors.As(err, &feedErr) {
		return feedErr.Code == ErrCodeAuthenticationFailed
	}
	return false
}
