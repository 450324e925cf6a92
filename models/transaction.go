package models

import "time"

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Payment methods
const (
	PaymentCash = "cash"
	PaymentBank = "bank"
)

// DateLayout is the storage format of calendar dates.
const DateLayout = "2006-01-02"

// Transaction is one ledger entry in whole currency units.
type Transaction struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint   `gorm:"index:idx_tx_user_date;not null"`
	Type          string `gorm:"size:16;not null"`
	Amount        int64  `gorm:"not null"`
	Category      string `gorm:"size:64;index"`
	Description   string `gorm:"type:text"`
	PaymentMethod string `gorm:"size:8;not null"`
	Date          string `gorm:"size:10;index:idx_tx_user_date;not null"`
}

// Signed returns the amount with +1 for income and -1 for expense.
func (t Transaction) Signed() int64 {
	if t.Type == TypeIncome {
		return t.Amount
	}
	return -t.Amount
}
