package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx migration driver
	_ "github.com/golang-migrate/migrate/v4/source/file"     // file source driver
)

// migrateURL rewrites a postgres:// DSN to the pgx5:// scheme golang-migrate
// expects for its pgx driver.
func migrateURL(dbURL string) string {
	if rest, ok := strings.CutPrefix(dbURL, "postgres://"); ok {
		return "pgx5://" + rest
	}
	return dbURL
}

// RunMigrations applies all pending migrations from migrationsPath (a plain
// directory path).  Called on startup; returns nil when the schema is already
// current.
func RunMigrations(dbURL, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, migrateURL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// RollbackMigration rolls the schema back by the given number of steps.
// Development and test use only.
func RollbackMigration(dbURL, migrationsPath string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}

	m, err := migrate.New("file://"+migrationsPath, migrateURL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	return nil
}

// MigrationStatus reports the currently applied version and whether the
// schema is dirty.  A dirty state means a migration failed part-way and needs
// manual intervention.
func MigrationStatus(dbURL, migrationsPath string) (version uint, dirty bool, err error) {
	m, err := migrate.New("file://"+migrationsPath, migrateURL(dbURL))
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}
