package service

import (
	"ColorWinApi/cmd/db"
	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
	"time"

	"gorm.io/gorm"
)

// The round engine talks to its collaborators through these interfaces so
// the settlement pipeline can be exercised against in-memory fakes. The
// gorm implementations below are the production wiring.

// BetLedger reads and closes out the wagers of one period.
type BetLedger interface {
	ColorStakes(duration string, periodNumber int64) (models.ColorStakes, error)
	PendingBets(duration string, periodNumber int64) ([]models.Bet, error)
	HasPendingBets(duration string, periodNumber int64) (bool, error)
	// MarkProcessed flips a bet pending -> processed exactly once; the
	// false return means another settlement run already owns the bet.
	MarkProcessed(betID int64) (bool, error)
}

// WalletLedger credits winnings. Credits are atomic increments so lanes
// settling concurrently never lose an update.
type WalletLedger interface {
	Credit(userID int64, currency string, amount float64) error
}

// ResultStore is the append-only table of settled outcomes.
type ResultStore interface {
	// InsertIfAbsent returns false when a result for the same
	// (duration, period) already exists; that duplicate is benign.
	InsertIfAbsent(result *models.GameResult) (bool, error)
	Find(duration string, periodNumber int64) (*models.GameResult, error)
	LastSettledPeriod(duration string) (int64, error)
}

// ResultBroadcaster fans out timer ticks and settled results to clients.
type ResultBroadcaster interface {
	BroadcastTimerUpdate(duration string, remainingMs int64)
	BroadcastResult(result *models.GameResult)
}

type gormBetLedger struct{}

func NewGormBetLedger() BetLedger {
	return gormBetLedger{}
}

func (gormBetLedger) ColorStakes(duration string, periodNumber int64) (models.ColorStakes, error) {
	return models.GetColorStakes(nil, duration, periodNumber)
}

func (gormBetLedger) PendingBets(duration string, periodNumber int64) ([]models.Bet, error) {
	return models.GetPendingBets(nil, duration, periodNumber)
}

func (gormBetLedger) HasPendingBets(duration string, periodNumber int64) (bool, error) {
	return models.HasPendingBets(nil, duration, periodNumber)
}

func (gormBetLedger) MarkProcessed(betID int64) (bool, error) {
	return models.MarkBetProcessed(nil, betID)
}

type gormWalletLedger struct{}

func NewGormWalletLedger() WalletLedger {
	return gormWalletLedger{}
}

// Credit increments the balance and records a Winning audit row in one
// transaction.
func (gormWalletLedger) Credit(userID int64, currency string, amount float64) error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := models.CreditWalletBalance(tx, userID, currency, amount); err != nil {
			return logger.WrapError(err, "")
		}

		win := models.Winning{
			UserID:    userID,
			Amount:    amount,
			Currency:  currency,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&win).Error; err != nil {
			return logger.WrapError(err, "failed to record winning")
		}

		return nil
	})
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

type gormResultStore struct{}

func NewGormResultStore() ResultStore {
	return gormResultStore{}
}

func (gormResultStore) InsertIfAbsent(result *models.GameResult) (bool, error) {
	return models.InsertGameResultIfAbsent(nil, result)
}

func (gormResultStore) Find(duration string, periodNumber int64) (*models.GameResult, error) {
	return models.GetGameResult(nil, duration, periodNumber)
}

func (gormResultStore) LastSettledPeriod(duration string) (int64, error) {
	return models.GetLastSettledPeriod(nil, duration)
}
