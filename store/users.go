package store

import (
	"context"
	"errors"
	"fmt"

	"keubot/models"
)

// GetOrCreateUser returns the user for a channel address, creating it on
// first contact. A non-empty name refreshes the stored display name.
func (s *Store) GetOrCreateUser(ctx context.Context, phone, name string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where(models.User{Phone: phone}).
		Attrs(models.User{Name: name}).
		FirstOrCreate(&u).Error
	if err != nil {
		// lost a creation race against another message from the same address
		if again, ferr := s.FindUserByPhone(ctx, phone); ferr == nil {
			return again, nil
		}
		return nil, fmt.Errorf("get or create user %s: %w", phone, err)
	}
	if name != "" && u.Name != name {
		if err := s.db.WithContext(ctx).Model(&u).Update("name", name).Error; err != nil {
			return nil, fmt.Errorf("update user name: %w", err)
		}
	}
	return &u, nil
}

// FindUserByPhone looks a user up by channel address.
func (s *Store) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ListUsers returns all users with their active role assignments.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Preload("Roles", "active = ?", true).
		Preload("Roles.Role").
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
