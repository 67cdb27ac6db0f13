package models

import "time"

// Winning is the audit record written next to every wallet credit.
type Winning struct {
	ID        int64   `json:"id" gorm:"primaryKey"`
	UserID    int64   `json:"user_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
