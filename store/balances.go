package store

import (
	"context"
	"fmt"
	"time"

	"keubot/models"

	"gorm.io/gorm"
)

// GetBalance returns the user's balance, initializing it to zero if absent.
func (s *Store) GetBalance(ctx context.Context, userID uint) (models.Balance, error) {
	var b models.Balance
	db := s.db.WithContext(ctx)
	if err := ensureBalance(db, userID); err != nil {
		return b, fmt.Errorf("init balance: %w", err)
	}
	if err := db.Where("user_id = ?", userID).First(&b).Error; err != nil {
		return b, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// ReconcileBalance recomputes cash and bank from the transaction log and
// overwrites the stored accumulator.
func (s *Store) ReconcileBalance(ctx context.Context, userID uint) (models.Balance, error) {
	var b models.Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type row struct {
			PaymentMethod string
			Total         int64
		}
		var rows []row
		err := tx.Model(&models.Transaction{}).
			Select("payment_method, CAST(COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0) AS BIGINT) AS total", models.TypeIncome).
			Where("user_id = ?", userID).
			Group("payment_method").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		b = models.Balance{UserID: userID, UpdatedAt: time.Now()}
		for _, r := range rows {
			if r.PaymentMethod == models.PaymentBank {
				b.Bank += r.Total
			} else {
				b.Cash += r.Total
			}
		}
		if err := ensureBalance(tx, userID); err != nil {
			return err
		}
		return tx.Model(&models.Balance{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{"cash": b.Cash, "bank": b.Bank, "updated_at": b.UpdatedAt}).Error
	})
	if err != nil {
		return models.Balance{}, fmt.Errorf("reconcile balance for user %d: %w", userID, err)
	}
	return b, nil
}
