package expense

import (
	"time"

	"github.com/google/uuid"
)

// DateRange is inclusive on both ends.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Filter is the resolved listing predicate. OwnerID is always part of it;
// Category and Range are optional and combine with AND.
type Filter struct {
	OwnerID  uuid.UUID
	Category *Category
	Range    *DateRange
}

func (f Filter) Match(rec Record) bool {
	if rec.UserID != f.OwnerID {
		return false
	}
	if f.Category != nil && rec.Category != *f.Category {
		return false
	}
	if f.Range != nil && !f.Range.Contains(rec.Date) {
		return false
	}
	return true
}
