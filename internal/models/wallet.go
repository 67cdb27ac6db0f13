package models

import (
	"ColorWinApi/cmd/db"
	"ColorWinApi/pkg/logger"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// WalletBalance holds one balance row per (user, currency). Every mutation
// is a single atomic SQL increment, never an application-level
// read-modify-write.
type WalletBalance struct {
	ID       int64  `gorm:"primaryKey,autoIncrement"`
	UserID   int64  `gorm:"index;uniqueIndex:idx_wallet_user_currency"`
	Currency string `gorm:"uniqueIndex:idx_wallet_user_currency"`
	Balance  float64
}

// CreditWalletBalance adds amount to the user's balance for currency,
// creating the row if it does not exist yet.
func CreditWalletBalance(tx *gorm.DB, userID int64, currency string, amount float64) error {
	if tx == nil {
		tx = db.DB
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "currency"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance": gorm.Expr("wallet_balances.balance + ?", amount),
		}),
	}).Create(&WalletBalance{
		UserID:   userID,
		Currency: currency,
		Balance:  amount,
	}).Error
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}

// DebitWalletBalance subtracts amount if the balance covers it. Returns
// ErrInsufficientBalance otherwise; the guard and the decrement are one
// statement so concurrent debits cannot overdraw.
func DebitWalletBalance(tx *gorm.DB, userID int64, currency string, amount float64) error {
	if tx == nil {
		tx = db.DB
	}

	res := tx.Model(&WalletBalance{}).
		Where("user_id = ? AND currency = ? AND balance >= ?", userID, currency, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return logger.WrapError(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

func GetUserWalletBalances(tx *gorm.DB, userID int64) ([]WalletBalance, error) {
	if tx == nil {
		tx = db.DB
	}

	var balances []WalletBalance
	err := tx.Where("user_id = ?", userID).Find(&balances).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return balances, nil
}
