package store

import (
	"context"
	"fmt"

	"keubot/models"
)

// CreateAttendance inserts one attendance record.
func (s *Store) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// ListAttendanceByDate returns one user's records for a calendar date in capture order.
func (s *Store) ListAttendanceByDate(ctx context.Context, userID uint, date string) ([]models.Attendance, error) {
	var out []models.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("time, id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", date, err)
	}
	return out, nil
}

// ListAttendance returns one user's records dated within [from, to].
func (s *Store) ListAttendance(ctx context.Context, userID uint, from, to string) ([]models.Attendance, error) {
	var out []models.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date, time, id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return out, nil
}
