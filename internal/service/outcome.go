package service

import (
	"math/rand"
	"strconv"

	"ColorWinApi/internal/models"
)

const (
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorViolet = "violet"

	SizeSmall = "small"
	SizeBig   = "big"
)

// Outcome is the settled result of one period: a number, the color it
// belongs to and its size.
type Outcome struct {
	Number int
	Color  string
	Size   string
}

// Each color owns a fixed pool of winning numbers.
var colorNumberPools = map[string][]int{
	ColorRed:    {1, 3, 7, 9},
	ColorGreen:  {2, 4, 6, 8},
	ColorViolet: {0, 5},
}

// PickOutcome chooses the winning color for a period from the total staked
// amount per color, then draws the number and size. The selection leans
// against whichever side would cost the house most: violet is dropped
// outright when it carries the strictly largest stake, and of red and green
// the heavier one never wins. Pure given the stakes and rng, so tests can
// pin the random source.
func PickOutcome(red, green, violet float64, rng *rand.Rand) Outcome {
	candidates := []string{ColorRed, ColorGreen, ColorViolet}

	if violet > red && violet > green && violet > 0 {
		candidates = excludeColor(candidates, ColorViolet)
	}

	var color string
	switch {
	case red == green && red > 0:
		if containsColor(candidates, ColorViolet) {
			color = ColorViolet
		} else {
			color = candidates[rng.Intn(len(candidates))]
		}
	case green > red:
		remaining := excludeColor(candidates, ColorGreen)
		color = remaining[rng.Intn(len(remaining))]
	case red > green:
		remaining := excludeColor(candidates, ColorRed)
		color = remaining[rng.Intn(len(remaining))]
	default:
		// no color bets at all
		color = candidates[rng.Intn(len(candidates))]
	}

	pool := colorNumberPools[color]
	number := pool[rng.Intn(len(pool))]

	return Outcome{
		Number: number,
		Color:  color,
		Size:   sizeForNumber(number),
	}
}

func sizeForNumber(n int) string {
	if n < 5 {
		return SizeSmall
	}
	return SizeBig
}

func containsColor(colors []string, color string) bool {
	for _, c := range colors {
		if c == color {
			return true
		}
	}
	return false
}

func excludeColor(colors []string, color string) []string {
	remaining := make([]string, 0, len(colors))
	for _, c := range colors {
		if c != color {
			remaining = append(remaining, c)
		}
	}
	return remaining
}

// betWins prices a single bet against the period outcome.
func betWins(bet models.Bet, result *models.GameResult) bool {
	switch bet.BetType {
	case models.BetTypeNumber:
		return bet.BetValue == strconv.Itoa(result.WinningNumber)
	case models.BetTypeColor:
		return bet.BetValue == result.WinningColor
	case models.BetTypeSize:
		return bet.BetValue == result.WinningSize
	}
	return false
}
