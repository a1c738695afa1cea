package storage

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/entity/user"
	"max.ks1230/expenses-api/internal/logger"
	"max.ks1230/expenses-api/internal/model/customerr"
)

const (
	usersTable    = "users"
	expensesTable = "expenses"
)

var (
	userColumns    = []string{"id", "email", "password_hash", "created_at"}
	expenseColumns = []string{"id", "user_id", "amount", "category", "description", "date"}
)

// SQLStorage implements the credential store and the expense repository on
// top of database/sql. Dialect differences live in the builder placeholder
// format and in isUniqueViolation.
type SQLStorage struct {
	db                *sql.DB
	builder           sq.StatementBuilderType
	isUniqueViolation func(err error) bool
}

func (s *SQLStorage) DB() *sql.DB {
	return s.db
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}

func (s *SQLStorage) GetUserByEmail(ctx context.Context, email string) (user.Record, error) {
	query := s.builder.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"email": email})

	var (
		res user.Record
		id  string
	)
	err := query.RunWith(s.db).QueryRowContext(ctx).
		Scan(&id, &res.Email, &res.PasswordHash, timeDest(&res.CreatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return user.Record{}, customerr.ErrUserNotFound
	}
	if err != nil {
		return user.Record{}, errors.Wrap(err, "get user")
	}
	if res.ID, err = uuid.Parse(id); err != nil {
		return user.Record{}, errors.Wrap(err, "get user")
	}
	return res, nil
}

func (s *SQLStorage) CreateUser(ctx context.Context, rec user.Record) error {
	query := s.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(rec.ID.String(), rec.Email, rec.PasswordHash, rec.CreatedAt.UTC())

	_, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil && s.isUniqueViolation(err) {
		return customerr.ErrDuplicateEmail
	}
	return errors.Wrap(err, "create user")
}

func (s *SQLStorage) InsertExpense(ctx context.Context, rec expense.Record) (expense.Record, error) {
	rec.Date = rec.Date.UTC()
	query := s.builder.Insert(expensesTable).
		Columns(expenseColumns...).
		Values(rec.ID.String(), rec.UserID.String(), rec.Amount, string(rec.Category),
			nullString(rec.Description), rec.Date)

	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return expense.Record{}, errors.Wrap(err, "insert expense")
	}
	return rec, nil
}

func (s *SQLStorage) FindExpenses(ctx context.Context, filter expense.Filter) ([]expense.Record, error) {
	query := s.builder.Select(expenseColumns...).
		From(expensesTable).
		Where(predicate(filter)).
		OrderBy("date DESC")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find expenses")
	}
	defer func() {
		rowErr := rows.Close()
		if rowErr != nil {
			logger.Error("error closing rows", zap.Error(rowErr))
		}
	}()

	exps := make([]expense.Record, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, errors.Wrap(err, "find expenses")
		}
		exps = append(exps, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "find expenses")
	}
	return exps, nil
}

// UpdateExpense matches and mutates in one statement, so a concurrent delete
// either happens before (not found) or after (deletes the updated row).
func (s *SQLStorage) UpdateExpense(ctx context.Context, owner, id uuid.UUID, patch expense.Patch) (expense.Record, error) {
	if patch.Empty() {
		return expense.Record{}, customerr.ErrNoFieldsToUpdate
	}

	query := s.builder.Update(expensesTable).
		SetMap(patchColumns(patch)).
		Where(sq.Eq{"id": id.String(), "user_id": owner.String()}).
		Suffix(returning())

	rec, err := scanExpense(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return expense.Record{}, customerr.ErrNotFound
	}
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "update expense")
	}
	return rec, nil
}

func (s *SQLStorage) DeleteExpense(ctx context.Context, owner, id uuid.UUID) (int64, error) {
	query := s.builder.Delete(expensesTable).
		Where(sq.Eq{"id": id.String(), "user_id": owner.String()})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "delete expense")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "delete expense")
}

// predicate always carries the owner; the rest is optional.
func predicate(filter expense.Filter) sq.And {
	where := sq.And{sq.Eq{"user_id": filter.OwnerID.String()}}
	if filter.Range != nil {
		where = append(where,
			sq.GtOrEq{"date": filter.Range.From.UTC()},
			sq.LtOrEq{"date": filter.Range.To.UTC()},
		)
	}
	if filter.Category != nil {
		where = append(where, sq.Eq{"category": string(*filter.Category)})
	}
	return where
}

func patchColumns(patch expense.Patch) map[string]interface{} {
	set := make(map[string]interface{})
	if patch.Amount != nil {
		set["amount"] = *patch.Amount
	}
	if patch.Category != nil {
		set["category"] = string(*patch.Category)
	}
	if patch.Date != nil {
		set["date"] = patch.Date.UTC()
	}
	if patch.SetDescription {
		set["description"] = nullString(patch.Description)
	}
	return set
}

func returning() string {
	cols := "RETURNING "
	for i, c := range expenseColumns {
		if i > 0 {
			cols += ", "
		}
		cols += c
	}
	return cols
}
