package models

import "time"

// Balance holds the running cash and bank totals of one user.
type Balance struct {
	UserID    uint  `gorm:"primaryKey;autoIncrement:false"`
	Cash      int64 `gorm:"not null;default:0"`
	Bank      int64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// Total is cash + bank.
func (b Balance) Total() int64 { return b.Cash + b.Bank }
