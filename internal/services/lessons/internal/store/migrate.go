package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	lessonsdb "github.com/gamma-omg/lexi-cards/internal/services/lessons/db"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// NewMigrator builds a migrator over the embedded migrations for the dialect.
// Closing the migrator closes db.
func NewMigrator(db *sql.DB, dialect Dialect) (*migrate.Migrate, error) {
	src, err := iofs.New(lessonsdb.Migrations, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case SQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return m, nil
}

// Migrate opens a dedicated connection and moves the schema all the way up or down.
func Migrate(ctx context.Context, cfg Config, up bool) error {
	db, err := Open(ctx, cfg)
	if err != nil {
		return err
	}

	m, err := NewMigrator(db.DB, cfg.Dialect)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
