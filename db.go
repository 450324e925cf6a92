package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"keubot/config"
	"keubot/pkg/address"
	"keubot/pkg/rbac"
	"keubot/store"

	"go.uber.org/zap"
)

// openStore connects to the database. Schema migration runs when enabled;
// migration errors are logged and ignored so a read-only role can still serve.
func openStore(cfg config.DatabaseConfig, migrate bool, log *zap.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := st.Migrate(); err != nil {
			log.Warn("migration warning", zap.Error(err))
		}
	}
	return st, nil
}

// seed ensures the role catalog exists and every bootstrap number holds the
// admin role.
func seed(ctx context.Context, st *store.Store, roles *rbac.Resolver, admins []string, log *zap.Logger) error {
	if err := roles.Seed(ctx, rbac.DefaultRoles()); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	for _, n := range admins {
		phone := address.Phone(n)
		if phone == "" {
			log.Warn("skipping invalid admin number", zap.String("number", n))
			continue
		}
		u, err := st.GetOrCreateUser(ctx, phone, "")
		if err != nil {
			return fmt.Errorf("bootstrap admin %s: %w", phone, err)
		}
		grants, err := roles.GetUserRoles(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("bootstrap admin %s: %w", phone, err)
		}
		if grants.Has(rbac.RoleAdmin) {
			continue
		}
		if _, err := roles.AssignRoleByName(ctx, u.ID, rbac.RoleAdmin, nil); err != nil {
			return fmt.Errorf("bootstrap admin %s: %w", phone, err)
		}
		log.Info("seeded admin", zap.String("phone", phone))
	}
	return nil
}

// ensureDirs creates the upload tree and the media spool directory.
func ensureDirs(cfg *config.Config) error {
	dirs := []string{attendanceDir(cfg)}
	if cfg.Media.SpoolDir != "" {
		dirs = append(dirs, cfg.Media.SpoolDir)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

func attendanceDir(cfg *config.Config) string {
	return filepath.Join(cfg.Upload.Base, "attendance")
}
