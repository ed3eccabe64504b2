package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrPublish = errors.New("publish leaderboard")
	ErrDecode  = errors.New("decode leaderboard line")
)
