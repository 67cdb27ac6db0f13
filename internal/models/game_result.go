package models

import (
	"ColorWinApi/cmd/db"
	"ColorWinApi/pkg/logger"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameResult is the settled outcome of one period. The composite unique
// index is the exactly-once invariant of the whole engine: the row for a
// (duration, period_number) pair is written once and never updated.
type GameResult struct {
	ID            int64  `gorm:"primaryKey,autoIncrement"`
	Duration      string `gorm:"uniqueIndex:idx_results_lane_period"`
	PeriodNumber  int64  `gorm:"uniqueIndex:idx_results_lane_period"`
	WinningNumber int
	WinningColor  string // "red", "green" or "violet"
	WinningSize   string // "small" or "big"
	CreatedAt     time.Time
}

// InsertGameResultIfAbsent writes the result unless one already exists for
// the same (duration, period). The duplicate check rides on the unique
// index, not a prior SELECT, so concurrent settlements cannot both insert.
// Returns false when another writer got there first.
func InsertGameResultIfAbsent(tx *gorm.DB, result *GameResult) (bool, error) {
	if tx == nil {
		tx = db.DB
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "duration"}, {Name: "period_number"}},
		DoNothing: true,
	}).Create(result)
	if res.Error != nil {
		return false, logger.WrapError(res.Error, "")
	}

	return res.RowsAffected == 1, nil
}

func GetGameResult(tx *gorm.DB, duration string, periodNumber int64) (*GameResult, error) {
	if tx == nil {
		tx = db.DB
	}

	var result GameResult
	err := tx.Where("duration = ? AND period_number = ?", duration, periodNumber).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, logger.WrapError(err, "")
	}

	return &result, nil
}

func GetLatestGameResult(tx *gorm.DB, duration string) (*GameResult, error) {
	if tx == nil {
		tx = db.DB
	}

	var result GameResult
	err := tx.Where("duration = ?", duration).
		Order("period_number desc").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, logger.WrapError(err, "")
	}

	return &result, nil
}

// GetLastSettledPeriod returns the highest settled period number for a
// lane, zero when the lane has never settled. Period numbering hangs off
// this value, which keeps it monotonic and gap-free even across restarts
// and missed ticks.
func GetLastSettledPeriod(tx *gorm.DB, duration string) (int64, error) {
	result, err := GetLatestGameResult(tx, duration)
	if err != nil {
		return 0, logger.WrapError(err, "")
	}
	if result == nil {
		return 0, nil
	}

	return result.PeriodNumber, nil
}

func GetGameResultHistory(tx *gorm.DB, duration string, limit int) ([]GameResult, error) {
	if tx == nil {
		tx = db.DB
	}

	var results []GameResult
	err := tx.Where("duration = ?", duration).
		Order("period_number desc").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return results, nil
}
