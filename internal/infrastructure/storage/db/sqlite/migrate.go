package sqlitedb

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var fs embed.FS

// Migrate brings the schema of the given database to the latest version and
// returns it.
func Migrate(db *sql.DB) (uint, error) {
	d, err := iofs.New(fs, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to read migration files: %w", err)
	}
	instance, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to create database instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", instance)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	oldVersion, dirty, err := m.Version()
	switch {
	case err == migrate.ErrNilVersion:
		log.Debug("sqlite db not yet created, creating schema")
	case err != nil:
		return 0, fmt.Errorf("cannot retrieve version: %w", err)
	case dirty:
		log.Warnf("sqlite db migration is dirty, forcing version %d", oldVersion-1)
		if err := m.Force(int(oldVersion) - 1); err != nil {
			return 0, fmt.Errorf(
				"cannot force version %d: %w", oldVersion-1, err,
			)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return 0, fmt.Errorf("failed to migrate database: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("cannot retrieve version after migration: %w", err)
	}
	if newVersion != oldVersion {
		log.Debugf("migrated sqlite db from version %d to %d", oldVersion, newVersion)
	}
	return newVersion, nil
}
