package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/entity/user"
	"max.ks1230/expenses-api/internal/model/customerr"
)

// InMemStorage keeps everything in maps. Each method runs under one lock, so
// the check-and-write steps (unique email, owner-scoped update) are atomic.
type InMemStorage struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]user.Record
	emails   map[string]uuid.UUID
	expenses map[uuid.UUID]expense.Record
	// seq keeps insertion order for records sharing a date.
	seq   map[uuid.UUID]int64
	clock int64
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{
		users:    make(map[uuid.UUID]user.Record),
		emails:   make(map[string]uuid.UUID),
		expenses: make(map[uuid.UUID]expense.Record),
		seq:      make(map[uuid.UUID]int64),
	}
}

func (s *InMemStorage) GetUserByEmail(_ context.Context, email string) (user.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return user.Record{}, customerr.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *InMemStorage) CreateUser(_ context.Context, rec user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[rec.Email]; ok {
		return customerr.ErrDuplicateEmail
	}
	s.users[rec.ID] = rec
	s.emails[rec.Email] = rec.ID
	return nil
}

func (s *InMemStorage) InsertExpense(_ context.Context, rec expense.Record) (expense.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock++
	s.expenses[rec.ID] = rec
	s.seq[rec.ID] = s.clock
	return rec, nil
}

func (s *InMemStorage) FindExpenses(_ context.Context, filter expense.Filter) ([]expense.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]expense.Record, 0)
	for _, rec := range s.expenses {
		if filter.Match(rec) {
			res = append(res, rec)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return s.seq[res[i].ID] < s.seq[res[j].ID]
	})
	return res, nil
}

func (s *InMemStorage) UpdateExpense(_ context.Context, owner, id uuid.UUID, patch expense.Patch) (expense.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.expenses[id]
	if !ok || rec.UserID != owner {
		return expense.Record{}, customerr.ErrNotFound
	}
	rec = patch.Apply(rec)
	s.expenses[id] = rec
	return rec, nil
}

func (s *InMemStorage) DeleteExpense(_ context.Context, owner, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.expenses[id]
	if !ok || rec.UserID != owner {
		return 0, nil
	}
	delete(s.expenses, id)
	delete(s.seq, id)
	return 1, nil
}

func (s *InMemStorage) Close() error {
	return nil
}
