package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorWinBetInputValidate(t *testing.T) {
	valid := func() ColorWinBetInput {
		return ColorWinBetInput{Duration: "1min", BetType: "color", BetValue: "red", Amount: 10}
	}

	t.Run("accepts well-formed bets", func(t *testing.T) {
		cases := []ColorWinBetInput{
			valid(),
			{Duration: "3min", BetType: "number", BetValue: "0", Amount: 1},
			{Duration: "5min", BetType: "number", BetValue: "9", Amount: 250},
			{Duration: "10min", BetType: "size", BetValue: "big", Amount: 5},
			{Duration: "1min", BetType: "color", BetValue: "violet", Amount: 3},
		}
		for _, input := range cases {
			assert.NoError(t, input.Validate(), "%+v", input)
		}
	})

	t.Run("rejects bad durations", func(t *testing.T) {
		input := valid()
		input.Duration = "2min"
		assert.Error(t, input.Validate())
	})

	t.Run("rejects bad bet types", func(t *testing.T) {
		input := valid()
		input.BetType = "parity"
		assert.Error(t, input.Validate())
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		cases := []ColorWinBetInput{
			{Duration: "1min", BetType: "number", BetValue: "10", Amount: 10},
			{Duration: "1min", BetType: "number", BetValue: "-1", Amount: 10},
			{Duration: "1min", BetType: "number", BetValue: "red", Amount: 10},
			{Duration: "1min", BetType: "color", BetValue: "blue", Amount: 10},
			{Duration: "1min", BetType: "size", BetValue: "medium", Amount: 10},
		}
		for _, input := range cases {
			assert.Error(t, input.Validate(), "%+v", input)
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		input := valid()
		input.Amount = 0
		assert.Error(t, input.Validate())
	})
}
