package storage

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/logger"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies the embedded schema for the dialect. It uses its own
// connection so closing the migrator never touches the caller's pool.
func RunMigrations(dialect Dialect, dsn string) error {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return errors.Wrap(err, "open migration database")
	}
	defer db.Close()

	var driver database.Driver
	switch dialect {
	case DialectPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return errors.Errorf("unknown dialect %q", dialect)
	}
	if err != nil {
		return errors.Wrap(err, "create migration driver")
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return errors.Wrap(err, "create iofs source")
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return errors.Wrap(err, "create migrate instance")
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "run migrations")
	}

	version, _, _ := m.Version()
	logger.Info("migrations applied", zap.String("dialect", string(dialect)), zap.Uint("version", version))
	return nil
}
