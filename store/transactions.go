package store

import (
	"context"
	"fmt"
	"time"

	"keubot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTransaction inserts t and applies its balance delta in the same
// database transaction. The returned balance is the post-insert state.
func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) (models.Balance, error) {
	var bal models.Balance
	if t.Amount <= 0 {
		return bal, ErrInvalidAmount
	}
	if t.PaymentMethod == "" {
		t.PaymentMethod = models.PaymentCash
	}
	if t.Date == "" {
		t.Date = time.Now().Format(models.DateLayout)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		b, err := applyDelta(tx, t.UserID, t.PaymentMethod, t.Signed())
		bal = b
		return err
	})
	if err != nil {
		return models.Balance{}, fmt.Errorf("create transaction: %w", err)
	}
	return bal, nil
}

// DeleteTransaction removes the transaction id owned by userID and reverses
// its balance effect. ErrNotFound when no such transaction exists.
func (s *Store) DeleteTransaction(ctx context.Context, id, userID uint) (*models.Transaction, models.Balance, error) {
	var (
		t   models.Transaction
		bal models.Balance
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
			return notFound(err)
		}
		res := tx.Delete(&t)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		b, err := applyDelta(tx, userID, t.PaymentMethod, -t.Signed())
		bal = b
		return err
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, models.Balance{}, ErrNotFound
		}
		return nil, models.Balance{}, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return &t, bal, nil
}

// ListTransactions returns the user's transactions dated within [from, to], newest first.
func (s *Store) ListTransactions(ctx context.Context, userID uint, from, to string) ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// ListTransactionsByCategory is ListTransactions filtered by a case-insensitive category.
func (s *Store) ListTransactionsByCategory(ctx context.Context, userID uint, category, from, to string) ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(category) = LOWER(?) AND date >= ? AND date <= ?", userID, category, from, to).
		Order("date DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions by category: %w", err)
	}
	return out, nil
}

// CategoryTotals aggregates the period by (category, type), largest first.
func (s *Store) CategoryTotals(ctx context.Context, userID uint, from, to string) ([]models.CategoryTotal, error) {
	var out []models.CategoryTotal
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("category, type, CAST(COALESCE(SUM(amount), 0) AS BIGINT) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Group("category, type").
		Order("total DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return out, nil
}

// DailyTotals aggregates the period by date, oldest first.
func (s *Store) DailyTotals(ctx context.Context, userID uint, from, to string) ([]models.DailyTotal, error) {
	var out []models.DailyTotal
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("date, "+
			"CAST(COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS BIGINT) AS income, "+
			"CAST(COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS BIGINT) AS expense",
			models.TypeIncome, models.TypeExpense).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Group("date").
		Order("date").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return out, nil
}

// applyDelta adds delta to the cash or bank column with a single UPDATE so
// concurrent writers for the same user never lose an increment.
func applyDelta(tx *gorm.DB, userID uint, method string, delta int64) (models.Balance, error) {
	var b models.Balance
	if err := ensureBalance(tx, userID); err != nil {
		return b, err
	}
	col := "cash"
	if method == models.PaymentBank {
		col = "bank"
	}
	err := tx.Model(&models.Balance{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{col: gorm.Expr(col+" + ?", delta), "updated_at": time.Now()}).Error
	if err != nil {
		return b, fmt.Errorf("apply balance delta: %w", err)
	}
	if err := tx.Where("user_id = ?", userID).First(&b).Error; err != nil {
		return b, fmt.Errorf("reload balance: %w", err)
	}
	return b, nil
}

func ensureBalance(tx *gorm.DB, userID uint) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Balance{UserID: userID, UpdatedAt: time.Now()}).Error
}
