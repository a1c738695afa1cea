package storage

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

type postgresConfig interface {
	DSN() string
}

type poolConfig interface {
	MaxOpenConns() int
}

func NewPostgresStorage(config postgresConfig, pool poolConfig) (*SQLStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	db.SetMaxOpenConns(pool.MaxOpenConns())

	if err = RunMigrations(DialectPostgres, config.DSN()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStorage{
		db:                db,
		builder:           sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		isUniqueViolation: isPostgresUniqueViolation,
	}, nil
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
