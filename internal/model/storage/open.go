package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/entity/user"
	"max.ks1230/expenses-api/internal/logger"
)

const driverMemory = "memory"

// Storage is the credential store and the expense repository behind one
// connection.
type Storage interface {
	GetUserByEmail(ctx context.Context, email string) (user.Record, error)
	CreateUser(ctx context.Context, rec user.Record) error
	InsertExpense(ctx context.Context, rec expense.Record) (expense.Record, error)
	FindExpenses(ctx context.Context, filter expense.Filter) ([]expense.Record, error)
	UpdateExpense(ctx context.Context, owner, id uuid.UUID, patch expense.Patch) (expense.Record, error)
	DeleteExpense(ctx context.Context, owner, id uuid.UUID) (int64, error)
	Close() error
}

type openConfig interface {
	Driver() string
	DSN() string
	Path() string
	MaxOpenConns() int
}

var (
	_ Storage = (*SQLStorage)(nil)
	_ Storage = (*InMemStorage)(nil)
)

// Open picks the backend named by the configured driver.
func Open(config openConfig) (Storage, error) {
	logger.Info("opening storage", zap.String("driver", config.Driver()))
	var (
		s   *SQLStorage
		err error
	)
	switch config.Driver() {
	case string(DialectPostgres):
		s, err = NewPostgresStorage(config, config)
	case string(DialectSQLite):
		s, err = NewSQLiteStorage(config)
	case driverMemory:
		return NewInMemStorage(), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", config.Driver())
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
