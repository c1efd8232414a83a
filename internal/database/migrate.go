package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// URLs
	_ "github.com/golang-migrate/migrate/v4/database/sqlite" // sqlite:// URLs
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/sebasr/greet-service/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// NewMigrate returns a migrate instance for the configured driver using the
// embedded schema. The caller must Close it.
func NewMigrate(cfg *config.DatabaseConfig) (*migrate.Migrate, error) {
	dbURL, err := migrationURL(cfg)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("database: load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("database: create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies every pending migration
func Migrate(cfg *config.DatabaseConfig) error {
	m, err := NewMigrate(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database: migrate up: %w", err)
	}
	return nil
}

func migrationURL(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.ConnectionString()
		for _, prefix := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dsn, prefix) {
				return "pgx5://" + strings.TrimPrefix(dsn, prefix), nil
			}
		}
		return "", errors.New("database: migrations need a postgres:// URL")
	case config.DriverSQLite:
		return "sqlite://" + cfg.Path, nil
	default:
		return "", fmt.Errorf("database: no migrations for driver %q", cfg.Driver)
	}
}
