package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"ColorWinApi/cmd/db"
	"ColorWinApi/internal/middleware"
	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
	"ColorWinApi/pkg/redis"
)

var validate = validator.New()

// ColorWinAPI serves the player-facing HTTP surface of the color game.
type ColorWinAPI struct {
	results ResultStore
	cache   *redis.RedisService
}

func NewColorWinAPI(results ResultStore, cache *redis.RedisService) *ColorWinAPI {
	return &ColorWinAPI{
		results: results,
		cache:   cache,
	}
}

type ColorWinBetInput struct {
	Duration string  `json:"duration" validate:"required"`
	BetType  string  `json:"bet_type" validate:"required,oneof=number color size"`
	BetValue string  `json:"bet_value" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,min=1"`
}

func (i *ColorWinBetInput) Validate() error {
	if err := validate.Struct(i); err != nil {
		return err
	}

	if !models.IsValidDurationToken(i.Duration) {
		return errors.New("invalid duration")
	}

	switch i.BetType {
	case models.BetTypeNumber:
		n, err := strconv.Atoi(i.BetValue)
		if err != nil || n < 0 || n > 9 {
			return errors.New("number bets take a value between 0 and 9")
		}
	case models.BetTypeColor:
		if i.BetValue != ColorRed && i.BetValue != ColorGreen && i.BetValue != ColorViolet {
			return errors.New("color bets take red, green or violet")
		}
	case models.BetTypeSize:
		if i.BetValue != SizeSmall && i.BetValue != SizeBig {
			return errors.New("size bets take small or big")
		}
	}

	return nil
}

// PlaceColorWinBet handles POST requests to stake on the open period of a
// lane. The stake is debited and the bet created in one transaction.
func (a *ColorWinAPI) PlaceColorWinBet(c *gin.Context) {
	var input ColorWinBetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	lastSettled, err := a.results.LastSettledPeriod(input.Duration)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	periodNumber := lastSettled + 1

	bet := models.Bet{
		UserID:       userID,
		Duration:     input.Duration,
		PeriodNumber: periodNumber,
		BetType:      input.BetType,
		BetValue:     input.BetValue,
		Amount:       input.Amount,
		Status:       models.BetStatusPending,
		CreatedAt:    time.Now(),
	}

	errPeriodClosed := errors.New("period already settled")

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// The lane may settle while the request is in flight; a bet must
		// never land on a period that already has a result.
		settled, err := models.GetGameResult(tx, input.Duration, periodNumber)
		if err != nil {
			return logger.WrapError(err, "")
		}
		if settled != nil {
			return errPeriodClosed
		}

		if err := models.DebitWalletBalance(tx, userID, SettlementCurrency, input.Amount); err != nil {
			return err
		}

		if err := tx.Create(&bet).Error; err != nil {
			return logger.WrapError(err, "")
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientBalance):
			c.JSON(402, gin.H{"error": "Insufficient balance"})
		case errors.Is(err, errPeriodClosed):
			c.JSON(409, gin.H{"error": "Betting on this period is closed"})
		default:
			logger.Error("Failed to place bet: %v", err)
			c.Status(500)
		}
		return
	}

	logger.Info("Bet placed: UserID=%d, %s period %d, %s=%s, amount=%.2f",
		userID, bet.Duration, bet.PeriodNumber, bet.BetType, bet.BetValue, bet.Amount)

	c.JSON(200, gin.H{
		"status":        "bet placed successfully",
		"period_number": bet.PeriodNumber,
		"duration":      bet.Duration,
	})
}

// GetUserColorWinBets returns the caller's bets for a lane, newest first,
// optionally narrowed to one period.
func (a *ColorWinAPI) GetUserColorWinBets(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	duration := c.Query("duration")
	if !models.IsValidDurationToken(duration) {
		c.JSON(400, gin.H{"error": "invalid duration"})
		return
	}

	var periodNumber int64
	if raw := c.Query("period"); raw != "" {
		periodNumber, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || periodNumber < 1 {
			c.JSON(400, gin.H{"error": "invalid period"})
			return
		}
	}

	bets, err := models.GetUserBets(nil, userID, duration, periodNumber, 50)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"results": bets})
}
