package service

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColorWinApi/internal/models"
)

func drawColors(t *testing.T, red, green, violet float64, rounds int) map[string]int {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	seen := make(map[string]int)
	for i := 0; i < rounds; i++ {
		outcome := PickOutcome(red, green, violet, rng)
		seen[outcome.Color]++

		assert.Contains(t, colorNumberPools[outcome.Color], outcome.Number)
		assert.Equal(t, sizeForNumber(outcome.Number), outcome.Size)
	}
	return seen
}

func TestPickOutcomeTieGoesToViolet(t *testing.T) {
	seen := drawColors(t, 100, 100, 10, 200)

	assert.Equal(t, 200, seen[ColorViolet])
	assert.Zero(t, seen[ColorRed])
	assert.Zero(t, seen[ColorGreen])

	// A tie with no violet stake still resolves to violet.
	seen = drawColors(t, 100, 100, 0, 200)
	assert.Equal(t, 200, seen[ColorViolet])
}

func TestPickOutcomeVioletMaxNeverWins(t *testing.T) {
	// Violet holds the strictly largest stake and red/green tie, so the
	// tie rule falls through to a coin flip between red and green.
	seen := drawColors(t, 100, 100, 500, 400)

	assert.Zero(t, seen[ColorViolet])
	assert.Positive(t, seen[ColorRed])
	assert.Positive(t, seen[ColorGreen])

	// Violet-only stakes: violet excluded, red and green split the rest.
	seen = drawColors(t, 0, 0, 500, 400)
	assert.Zero(t, seen[ColorViolet])
	assert.Positive(t, seen[ColorRed])
	assert.Positive(t, seen[ColorGreen])
}

func TestPickOutcomeHeavierColorNeverWins(t *testing.T) {
	greenHeavy := drawColors(t, 50, 200, 10, 400)
	assert.Zero(t, greenHeavy[ColorGreen])
	assert.Positive(t, greenHeavy[ColorRed])
	assert.Positive(t, greenHeavy[ColorViolet])

	redHeavy := drawColors(t, 200, 50, 10, 400)
	assert.Zero(t, redHeavy[ColorRed])
	assert.Positive(t, redHeavy[ColorGreen])
	assert.Positive(t, redHeavy[ColorViolet])
}

func TestPickOutcomeNoStakesIsUniformOverColors(t *testing.T) {
	seen := drawColors(t, 0, 0, 0, 600)

	assert.Positive(t, seen[ColorRed])
	assert.Positive(t, seen[ColorGreen])
	assert.Positive(t, seen[ColorViolet])
}

func TestPickOutcomeIsDeterministicForSeed(t *testing.T) {
	first := PickOutcome(30, 80, 20, rand.New(rand.NewSource(7)))
	second := PickOutcome(30, 80, 20, rand.New(rand.NewSource(7)))

	assert.Equal(t, first, second)
}

func TestSizeForNumber(t *testing.T) {
	for n := 0; n <= 4; n++ {
		assert.Equal(t, SizeSmall, sizeForNumber(n), "number %d", n)
	}
	for n := 5; n <= 9; n++ {
		assert.Equal(t, SizeBig, sizeForNumber(n), "number %d", n)
	}
}

func TestBetWins(t *testing.T) {
	result := &models.GameResult{WinningNumber: 7, WinningColor: ColorRed, WinningSize: SizeBig}

	cases := []struct {
		betType  string
		betValue string
		wins     bool
	}{
		{models.BetTypeNumber, "7", true},
		{models.BetTypeNumber, "3", false},
		{models.BetTypeColor, ColorRed, true},
		{models.BetTypeColor, ColorGreen, false},
		{models.BetTypeColor, ColorViolet, false},
		{models.BetTypeSize, SizeBig, true},
		{models.BetTypeSize, SizeSmall, false},
	}

	for _, tc := range cases {
		bet := models.Bet{BetType: tc.betType, BetValue: tc.betValue}
		assert.Equal(t, tc.wins, betWins(bet, result), "%s %s", tc.betType, tc.betValue)
	}
}

func TestColorNumberPoolsCoverEveryDigitOnce(t *testing.T) {
	seen := make(map[int]string)
	for color, pool := range colorNumberPools {
		for _, n := range pool {
			_, dup := seen[n]
			require.False(t, dup, "number %d in two pools", n)
			seen[n] = color
		}
	}

	for n := 0; n <= 9; n++ {
		color, ok := seen[n]
		require.True(t, ok, "number %d unassigned", n)
		// Every number must round-trip through a number bet.
		assert.True(t, betWins(
			models.Bet{BetType: models.BetTypeNumber, BetValue: strconv.Itoa(n)},
			&models.GameResult{WinningNumber: n, WinningColor: color, WinningSize: sizeForNumber(n)},
		))
	}
}
