package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Timestamps are written in SQLite's own text format so that range
// predicates compare correctly as strings.
const sqliteParams = "?_time_format=sqlite&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type sqliteConfig interface {
	Path() string
}

func NewSQLiteStorage(config sqliteConfig) (*SQLStorage, error) {
	path := config.Path()
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db directory")
		}
	}

	dsn := path + sqliteParams
	if err := RunMigrations(DialectSQLite, dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite database")
	}

	return &SQLStorage{
		db:                db,
		builder:           sq.StatementBuilder.PlaceholderFormat(sq.Question),
		isUniqueViolation: isSQLiteUniqueViolation,
	}, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
