package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keubot/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetRoleByName returns ErrNotFound for unknown names.
func (s *Store) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// ListRoles returns the role catalog ordered by id.
func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	var out []models.Role
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return out, nil
}

// UpsertRole creates the role by name or refreshes its definition.
func (s *Store) UpsertRole(ctx context.Context, r *models.Role) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Role
		err := tx.Where("name = ?", r.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(r).Error
		}
		if err != nil {
			return err
		}
		r.ID = existing.ID
		return tx.Model(&existing).
			Select("display_name", "emoji", "description", "features", "commands", "shortcuts", "quick_numbers", "active").
			Updates(r).Error
	})
}

// ListActiveUserRoles returns the user's active roles, most recently assigned first.
func (s *Store) ListActiveUserRoles(ctx context.Context, userID uint) ([]models.Role, error) {
	var urs []models.UserRole
	err := s.db.WithContext(ctx).
		Preload("Role").
		Where("user_id = ? AND active = ?", userID, true).
		Order("assigned_at DESC, id DESC").
		Find(&urs).Error
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	out := make([]models.Role, 0, len(urs))
	for _, ur := range urs {
		if ur.Role.Active {
			out = append(out, ur.Role)
		}
	}
	return out, nil
}

// UpsertUserRole activates the (user, role) assignment, inserting it or
// reactivating a previously removed one in a single statement.
func (s *Store) UpsertUserRole(ctx context.Context, userID, roleID uint, assignedBy *uint) error {
	now := time.Now()
	ur := models.UserRole{UserID: userID, RoleID: roleID, AssignedBy: assignedBy, AssignedAt: now, Active: true}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"active":      true,
			"assigned_by": assignedBy,
			"assigned_at": now,
			"removed_by":  nil,
			"removed_at":  nil,
			"updated_at":  now,
		}),
	}).Create(&ur).Error
	if err != nil {
		return fmt.Errorf("upsert user role: %w", err)
	}
	return nil
}

// DeactivateUserRole reports false when there was no active assignment.
func (s *Store) DeactivateUserRole(ctx context.Context, userID, roleID uint, removedBy *uint) (bool, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ? AND active = ?", userID, roleID, true).
		Updates(map[string]any{"active": false, "removed_by": removedBy, "removed_at": now, "updated_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("deactivate user role: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RoleStats counts active assignments per role.
func (s *Store) RoleStats(ctx context.Context) ([]models.RoleStat, error) {
	var out []models.RoleStat
	err := s.db.WithContext(ctx).
		Table("roles").
		Select("roles.name, roles.display_name, roles.emoji, COUNT(user_roles.id) AS users").
		Joins("LEFT JOIN user_roles ON user_roles.role_id = roles.id AND user_roles.active = ?", true).
		Group("roles.id, roles.name, roles.display_name, roles.emoji").
		Order("roles.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("role stats: %w", err)
	}
	return out, nil
}
