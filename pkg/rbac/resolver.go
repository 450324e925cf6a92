// Package rbac resolves the roles of a user and answers permission checks
// for commands, shortcuts, quick numbers and features.
package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"keubot/models"
	"keubot/store"
)

var (
	// ErrUnknownRole is returned for role names missing from the catalog.
	ErrUnknownRole = errors.New("unknown role")
	// ErrNoActiveAssignment is returned when removing a role the user does not hold.
	ErrNoActiveAssignment = errors.New("no active role assignment")
)

// Store is the persistence the resolver needs. GetRoleByName reports
// missing roles with store.ErrNotFound.
type Store interface {
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	UpsertRole(ctx context.Context, r *models.Role) error
	ListActiveUserRoles(ctx context.Context, userID uint) ([]models.Role, error)
	UpsertUserRole(ctx context.Context, userID, roleID uint, assignedBy *uint) error
	DeactivateUserRole(ctx context.Context, userID, roleID uint, removedBy *uint) (bool, error)
	RoleStats(ctx context.Context) ([]models.RoleStat, error)
}

// Resolver caches the role catalog; user assignments are always read
// through so changes made by other processes apply immediately.
type Resolver struct {
	store Store

	mu     sync.RWMutex
	byName map[string]models.Role
}

// NewResolver wraps a Store.
func NewResolver(s Store) *Resolver {
	return &Resolver{store: s, byName: make(map[string]models.Role)}
}

// Seed upserts the catalog and primes the cache.
func (r *Resolver) Seed(ctx context.Context, roles []models.Role) error {
	for i := range roles {
		if err := r.store.UpsertRole(ctx, &roles[i]); err != nil {
			return fmt.Errorf("seed role %s: %w", roles[i].Name, err)
		}
		r.remember(roles[i])
	}
	return nil
}

func (r *Resolver) remember(role models.Role) {
	r.mu.Lock()
	r.byName[role.Name] = role
	r.mu.Unlock()
}

// GetRoleByName returns ErrUnknownRole when the name is not in the catalog.
func (r *Resolver) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	role, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return &role, nil
	}
	found, err := r.store.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownRole
		}
		return nil, err
	}
	r.remember(*found)
	return found, nil
}

// ListRoles returns the whole catalog.
func (r *Resolver) ListRoles(ctx context.Context) ([]models.Role, error) {
	return r.store.ListRoles(ctx)
}

// GetUserRoles returns the user's active roles, most recent first.
func (r *Resolver) GetUserRoles(ctx context.Context, userID uint) (Grants, error) {
	roles, err := r.store.ListActiveUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Grants(roles), nil
}

// AssignRole activates (or reactivates) the assignment.
func (r *Resolver) AssignRole(ctx context.Context, userID, roleID uint, assignedBy *uint) error {
	return r.store.UpsertUserRole(ctx, userID, roleID, assignedBy)
}

// AssignRoleByName resolves name and assigns it.
func (r *Resolver) AssignRoleByName(ctx context.Context, userID uint, name string, assignedBy *uint) (*models.Role, error) {
	role, err := r.GetRoleByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := r.AssignRole(ctx, userID, role.ID, assignedBy); err != nil {
		return nil, err
	}
	return role, nil
}

// RemoveRole deactivates the assignment, ErrNoActiveAssignment when none existed.
func (r *Resolver) RemoveRole(ctx context.Context, userID, roleID uint, removedBy *uint) error {
	ok, err := r.store.DeactivateUserRole(ctx, userID, roleID, removedBy)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoActiveAssignment
	}
	return nil
}

// RemoveRoleByName resolves name and removes it.
func (r *Resolver) RemoveRoleByName(ctx context.Context, userID uint, name string, removedBy *uint) (*models.Role, error) {
	role, err := r.GetRoleByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return role, r.RemoveRole(ctx, userID, role.ID, removedBy)
}

// HasFeature checks a feature flag for the user.
func (r *Resolver) HasFeature(ctx context.Context, userID uint, feature string) (bool, error) {
	g, err := r.GetUserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return g.Feature(feature), nil
}

// CanUseCommand checks a full command such as "/saldo".
func (r *Resolver) CanUseCommand(ctx context.Context, userID uint, cmd string) (bool, error) {
	g, err := r.GetUserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return g.Command(cmd), nil
}

// CanUseShortcut checks a single-letter shortcut.
func (r *Resolver) CanUseShortcut(ctx context.Context, userID uint, s string) (bool, error) {
	g, err := r.GetUserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return g.Shortcut(s), nil
}

// CanUseQuickNumber checks a quick-select digit.
func (r *Resolver) CanUseQuickNumber(ctx context.Context, userID uint, n string) (bool, error) {
	g, err := r.GetUserRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return g.QuickNumber(n), nil
}

// Stats counts active assignments per role.
func (r *Resolver) Stats(ctx context.Context) ([]models.RoleStat, error) {
	return r.store.RoleStats(ctx)
}
