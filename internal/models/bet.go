package models

import (
	"ColorWinApi/cmd/db"
	"ColorWinApi/pkg/logger"
	"time"

	"gorm.io/gorm"
)

const (
	BetTypeNumber = "number"
	BetTypeColor  = "color"
	BetTypeSize   = "size"

	BetStatusPending   = "pending"
	BetStatusProcessed = "processed"
)

// Bet is a single wager inside one period of one duration lane. Settlement
// is the only writer after creation and it only ever flips status
// pending -> processed.
type Bet struct {
	ID           int64  `gorm:"primaryKey,autoIncrement"`
	UserID       int64  `gorm:"index"`
	Duration     string `gorm:"index:idx_bets_lane_period"`
	PeriodNumber int64  `gorm:"index:idx_bets_lane_period"`
	BetType      string // "number", "color" or "size"
	BetValue     string
	Amount       float64
	Status       string `gorm:"index"` // "pending" or "processed"
	CreatedAt    time.Time
}

// ColorStakes is the total pending amount per color for one period.
type ColorStakes struct {
	Red    float64
	Green  float64
	Violet float64
}

// GetColorStakes sums pending color-bet amounts for a period. Colors with
// no bets report zero.
func GetColorStakes(tx *gorm.DB, duration string, periodNumber int64) (ColorStakes, error) {
	if tx == nil {
		tx = db.DB
	}

	type row struct {
		BetValue string
		Total    float64
	}

	var rows []row
	err := tx.Model(&Bet{}).
		Select("bet_value, SUM(amount) as total").
		Where("duration = ? AND period_number = ? AND bet_type = ?",
			duration, periodNumber, BetTypeColor).
		Group("bet_value").
		Scan(&rows).Error
	if err != nil {
		return ColorStakes{}, logger.WrapError(err, "")
	}

	var stakes ColorStakes
	for _, r := range rows {
		switch r.BetValue {
		case "red":
			stakes.Red = r.Total
		case "green":
			stakes.Green = r.Total
		case "violet":
			stakes.Violet = r.Total
		}
	}

	return stakes, nil
}

func GetPendingBets(tx *gorm.DB, duration string, periodNumber int64) ([]Bet, error) {
	if tx == nil {
		tx = db.DB
	}

	var bets []Bet
	err := tx.Where("duration = ? AND period_number = ? AND status = ?",
		duration, periodNumber, BetStatusPending).
		Find(&bets).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return bets, nil
}

func HasPendingBets(tx *gorm.DB, duration string, periodNumber int64) (bool, error) {
	if tx == nil {
		tx = db.DB
	}

	var count int64
	err := tx.Model(&Bet{}).
		Where("duration = ? AND period_number = ? AND status = ?",
			duration, periodNumber, BetStatusPending).
		Count(&count).Error
	if err != nil {
		return false, logger.WrapError(err, "")
	}

	return count > 0, nil
}

// MarkBetProcessed flips one bet pending -> processed. The WHERE clause on
// status makes it a compare-and-swap: only one caller ever wins, so a bet
// can never be settled twice.
func MarkBetProcessed(tx *gorm.DB, betID int64) (bool, error) {
	if tx == nil {
		tx = db.DB
	}

	res := tx.Model(&Bet{}).
		Where("id = ? AND status = ?", betID, BetStatusPending).
		Update("status", BetStatusProcessed)
	if res.Error != nil {
		return false, logger.WrapError(res.Error, "")
	}

	return res.RowsAffected == 1, nil
}

func GetUserBets(tx *gorm.DB, userID int64, duration string, periodNumber int64, limit int) ([]Bet, error) {
	if tx == nil {
		tx = db.DB
	}

	query := tx.Where("user_id = ? AND duration = ?", userID, duration)
	if periodNumber > 0 {
		query = query.Where("period_number = ?", periodNumber)
	}

	var bets []Bet
	err := query.Order("id desc").Limit(limit).Find(&bets).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return bets, nil
}
