package storage

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/entity/user"
	"max.ks1230/expenses-api/internal/model/customerr"
)

type sqlitePath string

func (p sqlitePath) Path() string {
	return string(p)
}

var baseDate = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// forEachBackend runs fn against a fresh in-memory store and a fresh SQLite
// file.
func forEachBackend(t *testing.T, fn func(t *testing.T, s Storage)) {
	t.Run("memory", func(t *testing.T) {
		s := NewInMemStorage()
		defer s.Close()
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStorage(sqlitePath(filepath.Join(t.TempDir(), "nested", "expenses.db")))
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func newUser(email string) user.Record {
	return user.Record{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    baseDate,
	}
}

func insert(t *testing.T, s Storage, owner uuid.UUID, amount float64, cat expense.Category, date time.Time) expense.Record {
	t.Helper()
	rec, err := s.InsertExpense(context.Background(), expense.Record{
		ID:       uuid.New(),
		UserID:   owner,
		Amount:   amount,
		Category: cat,
		Date:     date,
	})
	require.NoError(t, err)
	return rec
}

func ids(recs []expense.Record) []uuid.UUID {
	res := make([]uuid.UUID, 0, len(recs))
	for _, r := range recs {
		res = append(res, r.ID)
	}
	return res
}

func Test_Users_ShouldCreateAndFindByEmail(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		u := newUser("alice@example.com")
		require.NoError(t, s.CreateUser(ctx, u))

		got, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
		assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

		_, err = s.GetUserByEmail(ctx, "bob@example.com")
		assert.ErrorIs(t, err, customerr.ErrUserNotFound)
	})
}

func Test_Users_ShouldRejectDuplicateEmail(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		require.NoError(t, s.CreateUser(ctx, newUser("alice@example.com")))

		err := s.CreateUser(ctx, newUser("alice@example.com"))
		assert.ErrorIs(t, err, customerr.ErrDuplicateEmail)
	})
}

func Test_Users_ShouldAllowOneOfConcurrentRegistrations(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		const n = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.CreateUser(context.Background(), newUser("race@example.com"))
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, customerr.ErrDuplicateEmail)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, created)
	})
}

func Test_FindExpenses_ShouldScopeByOwnerAndSortByDateDesc(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		alice, bob := uuid.New(), uuid.New()
		first := insert(t, s, alice, 10, expense.Food, baseDate.AddDate(0, 0, -5))
		second := insert(t, s, alice, 20, expense.Food, baseDate)
		third := insert(t, s, alice, 30, expense.Health, baseDate.AddDate(0, 0, -1))
		insert(t, s, bob, 40, expense.Food, baseDate)

		res, err := s.FindExpenses(context.Background(), expense.Filter{OwnerID: alice})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{second.ID, third.ID, first.ID}, ids(res))
		for _, r := range res {
			assert.Equal(t, alice, r.UserID)
		}
	})
}

func Test_InsertExpense_ShouldKeepAmountsExact(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		owner := uuid.New()
		amounts := []float64{10.005, 0.001, 1e12}
		for i, amount := range amounts {
			rec := insert(t, s, owner, amount, expense.Food, baseDate.AddDate(0, 0, -i))
			assert.Equal(t, amount, rec.Amount)
		}

		res, err := s.FindExpenses(context.Background(), expense.Filter{OwnerID: owner})
		require.NoError(t, err)
		require.Len(t, res, len(amounts))
		for i, rec := range res {
			assert.Equal(t, amounts[i], rec.Amount)
		}
	})
}

func Test_Migrations_ShouldStoreAmountsAsFloatingPoint(t *testing.T) {
	for dir, column := range map[string]string{
		"migrations/postgres": "amount      DOUBLE PRECISION",
		"migrations/sqlite":   "amount      REAL",
	} {
		raw, err := fs.ReadFile(migrationsFS, dir+"/000001_init.up.sql")
		require.NoError(t, err)
		assert.Contains(t, string(raw), column, dir)
	}
}

func Test_FindExpenses_ShouldApplyInclusiveRangeAndCategory(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		owner := uuid.New()
		from := baseDate.AddDate(0, 0, -7)
		atFrom := insert(t, s, owner, 10, expense.Food, from)
		atTo := insert(t, s, owner, 10, expense.Transport, baseDate)
		insert(t, s, owner, 10, expense.Food, from.Add(-time.Second))
		insert(t, s, owner, 10, expense.Food, baseDate.Add(time.Second))

		ctx := context.Background()
		res, err := s.FindExpenses(ctx, expense.Filter{
			OwnerID: owner,
			Range:   &expense.DateRange{From: from, To: baseDate},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{atTo.ID, atFrom.ID}, ids(res))

		food := expense.Food
		res, err = s.FindExpenses(ctx, expense.Filter{
			OwnerID:  owner,
			Category: &food,
			Range:    &expense.DateRange{From: from, To: baseDate},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{atFrom.ID}, ids(res))
	})
}

func Test_FindExpenses_ShouldReturnEmptySlice(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		res, err := s.FindExpenses(context.Background(), expense.Filter{OwnerID: uuid.New()})
		require.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
	})
}

func Test_UpdateExpense_ShouldPatchOwnedRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		owner := uuid.New()
		rec := insert(t, s, owner, 10, expense.Food, baseDate)

		amount := 25.5
		desc := "dinner"
		newDate := baseDate.AddDate(0, 0, -1)
		updated, err := s.UpdateExpense(ctx, owner, rec.ID, expense.Patch{
			Amount:         &amount,
			Date:           &newDate,
			Description:    &desc,
			SetDescription: true,
		})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, updated.ID)
		assert.Equal(t, 25.5, updated.Amount)
		assert.Equal(t, expense.Food, updated.Category)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "dinner", *updated.Description)
		assert.True(t, newDate.Equal(updated.Date))

		updated, err = s.UpdateExpense(ctx, owner, rec.ID, expense.Patch{SetDescription: true})
		require.NoError(t, err)
		assert.Nil(t, updated.Description)
		assert.Equal(t, 25.5, updated.Amount)
	})
}

func Test_UpdateExpense_ShouldNotTouchForeignRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		owner := uuid.New()
		rec := insert(t, s, owner, 10, expense.Food, baseDate)

		amount := 99.0
		_, err := s.UpdateExpense(ctx, uuid.New(), rec.ID, expense.Patch{Amount: &amount})
		assert.ErrorIs(t, err, customerr.ErrNotFound)

		res, err := s.FindExpenses(ctx, expense.Filter{OwnerID: owner})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, 10.0, res[0].Amount)
	})
}

func Test_DeleteExpense_ShouldReportAffectedRows(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		owner := uuid.New()
		rec := insert(t, s, owner, 10, expense.Food, baseDate)

		n, err := s.DeleteExpense(ctx, uuid.New(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = s.DeleteExpense(ctx, owner, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.DeleteExpense(ctx, owner, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func Test_SQLStorage_ShouldEmptyPatchFail(t *testing.T) {
	s, err := NewSQLiteStorage(sqlitePath(filepath.Join(t.TempDir(), "expenses.db")))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.UpdateExpense(context.Background(), uuid.New(), uuid.New(), expense.Patch{})
	assert.ErrorIs(t, err, customerr.ErrNoFieldsToUpdate)
}

func Test_SQLiteStorage_ShouldReopenMigratedFile(t *testing.T) {
	path := sqlitePath(filepath.Join(t.TempDir(), "expenses.db"))
	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	owner := uuid.New()
	insert(t, s, owner, 10, expense.Food, baseDate)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer s.Close()

	res, err := s.FindExpenses(context.Background(), expense.Filter{OwnerID: owner})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

type openTestConfig struct {
	driver, path string
}

func (c openTestConfig) Driver() string {
	return c.driver
}

func (c openTestConfig) DSN() string {
	return ""
}

func (c openTestConfig) Path() string {
	return c.path
}

func (c openTestConfig) MaxOpenConns() int {
	return 1
}

func Test_Open_ShouldSelectBackendByDriver(t *testing.T) {
	s, err := Open(openTestConfig{driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &InMemStorage{}, s)

	s, err = Open(openTestConfig{driver: "sqlite", path: filepath.Join(t.TempDir(), "open.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStorage{}, s)
	require.NoError(t, s.Close())

	_, err = Open(openTestConfig{driver: "mongo"})
	assert.Error(t, err)
}
