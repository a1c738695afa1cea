package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"max.ks1230/expenses-api/internal/entity/expense"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// timeScanner accepts whatever the driver hands back for a timestamp column:
// lib/pq returns time.Time, sqlite may return text for expression columns
// such as RETURNING.
type timeScanner struct {
	dst *time.Time
}

func timeDest(dst *time.Time) *timeScanner {
	return &timeScanner{dst: dst}
}

func (s *timeScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		return errors.New("scan time: null value")
	}
	return errors.Errorf("scan time: unsupported type %T", src)
}

func (s *timeScanner) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return errors.Errorf("scan time: cannot parse %q", v)
}

func scanExpense(row rowScanner) (expense.Record, error) {
	var (
		rec         expense.Record
		id, userID  string
		category    string
		description sql.NullString
	)
	err := row.Scan(&id, &userID, &rec.Amount, &category, &description, timeDest(&rec.Date))
	if err != nil {
		return expense.Record{}, err
	}
	if rec.ID, err = uuid.Parse(id); err != nil {
		return expense.Record{}, errors.Wrap(err, "scan expense id")
	}
	if rec.UserID, err = uuid.Parse(userID); err != nil {
		return expense.Record{}, errors.Wrap(err, "scan expense owner")
	}
	rec.Category = expense.Category(category)
	if description.Valid {
		rec.Description = &description.String
	}
	return rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
