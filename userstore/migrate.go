package userstore

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/multiAuth/userstore/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange is returned by Migrate when the schema is already at the target.
var ErrNoChange = migrate.ErrNoChange

// Migrate applies the embedded schema in direction ("up" or "down") on the
// open connection. Being already at the target is not an error.
func (s *SQL) Migrate(direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	sourceDriver, err := iofs.New(migrations.FS, string(s.dialect))
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	var dbDriver database.Driver
	switch s.dialect {
	case DialectPostgres:
		dbDriver, err = postgres.WithInstance(s.db, &postgres.Config{})
	case DialectSQLite:
		dbDriver, err = sqlite.WithInstance(s.db, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database dialect %q", s.dialect)
	}
	if err != nil {
		_ = sourceDriver.Close()
		return fmt.Errorf("migrate driver: %w", err)
	}

	// The database driver is not closed: it would close s.db with it.
	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(s.dialect), dbDriver)
	if err != nil {
		_ = sourceDriver.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _ = sourceDriver.Close() }()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
