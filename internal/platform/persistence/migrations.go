package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	"github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the ledger schema up to the newest migration under migrationsPath
// and returns the schema version the database ends on.
func RunMigrations(logger *slog.Logger, databaseURL string, migrationsPath string) (uint, error) {
	if migrationsPath == "" {
		return 0, errors.New("migrations path cannot be empty")
	}
	if databaseURL == "" {
		return 0, errors.New("database URL cannot be empty")
	}

	latest, err := latestMigration(migrationsPath)
	if err != nil {
		return 0, err
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrator", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	applied := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return 0, fmt.Errorf("failed to apply migrations: %w", err)
		}
		applied = false
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty, fix it by hand before restarting", version)
	}

	logger.Info("Ledger schema ready", "version", version, "latest", latest, "applied", applied)
	return version, nil
}

// latestMigration scans the migration files and returns the highest version found
func latestMigration(migrationsPath string) (uint, error) {
	if info, err := os.Stat(migrationsPath); err != nil {
		return 0, fmt.Errorf("migrations path %s: %w", migrationsPath, err)
	} else if !info.IsDir() {
		return 0, fmt.Errorf("migrations path %s is not a directory", migrationsPath)
	}

	src, err := (&file.File{}).Open("file://" + migrationsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open migrations: %w", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("no migrations found in %s: %w", migrationsPath, err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read migrations: %w", err)
		}
		version = next
	}
}
