package models

import "errors"

// ErrScoreUnparsable marks a score string that is neither a goal pair
// nor a recognized absence marker.
var ErrScoreUnparsable = errors.New("score string is not a goal pair")
