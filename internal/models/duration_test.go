package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameDurations(t *testing.T) {
	expected := map[string]time.Duration{
		"1min":  1 * time.Minute,
		"3min":  3 * time.Minute,
		"5min":  5 * time.Minute,
		"10min": 10 * time.Minute,
	}

	require.Len(t, GameDurations, len(expected))
	for token, window := range expected {
		assert.Equal(t, window, GameDurations[token])
	}
}

func TestDurationTokensMatchGameDurations(t *testing.T) {
	require.Len(t, DurationTokens, len(GameDurations))
	for _, token := range DurationTokens {
		_, ok := GameDurations[token]
		assert.True(t, ok, "token %q has no window", token)
	}
}

func TestIsValidDurationToken(t *testing.T) {
	for _, token := range DurationTokens {
		assert.True(t, IsValidDurationToken(token))
	}

	for _, token := range []string{"", "2min", "1 min", "1MIN", "60s", "min1"} {
		assert.False(t, IsValidDurationToken(token), "token %q", token)
	}
}
