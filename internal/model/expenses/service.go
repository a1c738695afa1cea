package expenses

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/logger"
	"max.ks1230/expenses-api/internal/model/customerr"
	"max.ks1230/expenses-api/internal/model/reports"
)

type expensesStorage interface {
	InsertExpense(ctx context.Context, rec expense.Record) (expense.Record, error)
	FindExpenses(ctx context.Context, filter expense.Filter) ([]expense.Record, error)
	UpdateExpense(ctx context.Context, owner, id uuid.UUID, patch expense.Patch) (expense.Record, error)
	DeleteExpense(ctx context.Context, owner, id uuid.UUID) (int64, error)
}

type reportGenerator interface {
	GenerateReport(ctx context.Context, filter expense.Filter) (reports.Summary, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event expense.Event) error
}

type summaryCache interface {
	GetSummary(owner uuid.UUID, option string) (reports.Summary, error)
	CacheSummary(owner uuid.UUID, option string, summary reports.Summary) error
	InvalidateCache(owner uuid.UUID) error
}

// NewExpense is the input of Create; the owner comes from the caller's
// identity and never from the payload.
type NewExpense struct {
	Amount      float64
	Category    expense.Category
	Description *string
	Date        time.Time
}

type Service struct {
	storage   expensesStorage
	generator reportGenerator
	publisher eventPublisher
	cache     summaryCache
	now       func() time.Time

	// stale holds owners whose cache generation could not be bumped after a
	// mutation. Their summaries bypass the cache until invalidation succeeds.
	stale sync.Map
}

type Option func(s *Service)

// WithPublisher enables change events. Publishing is best effort.
func WithPublisher(p eventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithCache enables summary caching.
func WithCache(c summaryCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(storage expensesStorage, generator reportGenerator, opts ...Option) *Service {
	s := &Service{
		storage:   storage,
		generator: generator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, in NewExpense) (rec expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "expenses.Create")
	defer finishSpan(span, &err)

	rec, err = s.storage.InsertExpense(ctx, expense.Record{
		ID:          uuid.New(),
		UserID:      owner,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date.UTC(),
	})
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "create expense")
	}

	s.changed(ctx, expense.NewEvent(expense.EventCreated, owner, rec.ID, &rec, s.now()))
	return rec, nil
}

// List resolves the query once against the current time and returns the
// owner's matching expenses, newest first.
func (s *Service) List(ctx context.Context, q ListQuery) (res []expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "expenses.List")
	defer finishSpan(span, &err)

	filter, err := BuildFilter(q, s.now())
	if err != nil {
		return nil, err
	}
	res, err = s.storage.FindExpenses(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, patch expense.Patch) (rec expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "expenses.Update")
	defer finishSpan(span, &err)

	if patch.Empty() {
		return expense.Record{}, customerr.ErrNoFieldsToUpdate
	}
	rec, err = s.storage.UpdateExpense(ctx, owner, id, patch)
	if err != nil {
		if errors.Is(err, customerr.ErrNotFound) || errors.Is(err, customerr.ErrNoFieldsToUpdate) {
			return expense.Record{}, err
		}
		return expense.Record{}, errors.Wrap(err, "update expense")
	}

	s.changed(ctx, expense.NewEvent(expense.EventUpdated, owner, rec.ID, &rec, s.now()))
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "expenses.Delete")
	defer finishSpan(span, &err)

	n, err := s.storage.DeleteExpense(ctx, owner, id)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if n == 0 {
		return customerr.ErrNotFound
	}

	s.changed(ctx, expense.NewEvent(expense.EventDeleted, owner, id, nil, s.now()))
	return nil
}

// Summary totals the expenses List would return for q, grouped by category.
func (s *Service) Summary(ctx context.Context, q ListQuery) (report reports.Summary, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "expenses.Summary")
	defer finishSpan(span, &err)

	filter, err := BuildFilter(q, s.now())
	if err != nil {
		return reports.Summary{}, err
	}

	key := q.Key()
	useCache := s.cache != nil && s.cacheTrusted(q.OwnerID)
	if useCache {
		cached, cacheErr := s.cache.GetSummary(q.OwnerID, key)
		if cacheErr == nil {
			return cached, nil
		}
		logger.Debug("summary not served from cache", zap.String("key", key), zap.Error(cacheErr))
	}

	report, err = s.generator.GenerateReport(ctx, filter)
	if err != nil {
		return reports.Summary{}, errors.Wrap(err, "summary")
	}

	if useCache {
		if cacheErr := s.cache.CacheSummary(q.OwnerID, key, report); cacheErr != nil {
			logger.Warn("failed to cache summary", zap.Error(cacheErr))
		}
	}
	return report, nil
}

// changed runs the side effects of a committed mutation. Neither of them can
// fail the request.
func (s *Service) changed(ctx context.Context, event expense.Event) {
	if s.cache != nil {
		if err := s.cache.InvalidateCache(event.UserID); err != nil {
			s.stale.Store(event.UserID, struct{}{})
			logger.Warn("failed to invalidate summary cache",
				zap.Stringer("userID", event.UserID), zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.Warn("failed to publish event",
				zap.String("type", string(event.Type)),
				zap.Stringer("expenseID", event.ExpenseID),
				zap.Error(err))
		}
	}
}

// cacheTrusted retries a failed invalidation for owner and reports whether
// cached summaries of that owner can be served again.
func (s *Service) cacheTrusted(owner uuid.UUID) bool {
	if _, ok := s.stale.Load(owner); !ok {
		return true
	}
	if err := s.cache.InvalidateCache(owner); err != nil {
		logger.Debug("summary cache still stale", zap.Stringer("userID", owner), zap.Error(err))
		return false
	}
	s.stale.Delete(owner)
	return true
}

func finishSpan(span opentracing.Span, err *error) {
	if *err != nil && !isClientError(*err) {
		ext.Error.Set(span, true)
	}
	span.Finish()
}

func isClientError(err error) bool {
	var validation *customerr.ValidationError
	return errors.Is(err, customerr.ErrNotFound) ||
		errors.Is(err, customerr.ErrNoFieldsToUpdate) ||
		errors.Is(err, customerr.ErrMissingRangeBounds) ||
		errors.As(err, &validation)
}
