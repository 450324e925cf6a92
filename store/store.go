// Package store is the gorm-backed repository for users, roles,
// transactions, balances and attendance records.
package store

import (
	"errors"
	"fmt"
	"strings"

	"keubot/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrInvalidAmount is returned when a transaction amount is not positive.
var ErrInvalidAmount = errors.New("amount must be positive")

// Store wraps a gorm handle.
type Store struct {
	db *gorm.DB
}

// New wraps an already opened gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to postgres or sqlite. An empty driver is inferred from the DSN.
func Open(driver, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty database dsn")
	}
	if driver == "" {
		driver = inferDriver(dsn)
	}
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return &Store{db: db}, nil
}

func inferDriver(dsn string) string {
	low := strings.ToLower(dsn)
	if strings.HasPrefix(low, "postgres://") || strings.HasPrefix(low, "postgresql://") || strings.Contains(low, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// DB exposes the underlying handle for tools.
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate creates or updates every table. Tables are migrated one by one so a
// failure on one does not block the others; all failures are returned joined.
func (s *Store) Migrate() error {
	var errs []error
	for _, m := range []any{
		&models.Role{},
		&models.User{},
		&models.UserRole{},
		&models.Transaction{},
		&models.Balance{},
		&models.Attendance{},
	} {
		if err := s.db.AutoMigrate(m); err != nil {
			errs = append(errs, fmt.Errorf("migrate %T: %w", m, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
