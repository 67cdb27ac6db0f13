package models

import "time"

// Game window lengths keyed by the duration tokens accepted at the API
// boundary. Every other duration value is a validation error.
var GameDurations = map[string]time.Duration{
	"1min":  1 * time.Minute,
	"3min":  3 * time.Minute,
	"5min":  5 * time.Minute,
	"10min": 10 * time.Minute,
}

// DurationTokens lists the configured lanes in ascending window order.
var DurationTokens = []string{"1min", "3min", "5min", "10min"}

func IsValidDurationToken(token string) bool {
	_, ok := GameDurations[token]
	return ok
}
