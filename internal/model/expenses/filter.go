package expenses

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/model/customerr"
)

const day = 24 * time.Hour

type RangeKind int

const (
	RangeNone RangeKind = iota
	RangePastWeek
	RangePastMonth
	RangeLast3Months
	RangeCustom
)

var rangeNames = map[string]RangeKind{
	"past_week":     RangePastWeek,
	"past_month":    RangePastMonth,
	"last_3_months": RangeLast3Months,
	"custom":        RangeCustom,
}

var rangeSpans = map[RangeKind]time.Duration{
	RangePastWeek:    7 * day,
	RangePastMonth:   30 * day,
	RangeLast3Months: 90 * day,
}

// RangeSelector is the named date window of a listing. Start and End are only
// consulted for RangeCustom.
type RangeSelector struct {
	Kind  RangeKind
	Start *time.Time
	End   *time.Time
}

func NoRange() RangeSelector {
	return RangeSelector{Kind: RangeNone}
}

func PastWeek() RangeSelector {
	return RangeSelector{Kind: RangePastWeek}
}

func PastMonth() RangeSelector {
	return RangeSelector{Kind: RangePastMonth}
}

func Last3Months() RangeSelector {
	return RangeSelector{Kind: RangeLast3Months}
}

func Custom(start, end *time.Time) RangeSelector {
	return RangeSelector{Kind: RangeCustom, Start: start, End: end}
}

// ParseRange maps the `rango` query value onto a selector. An empty or
// unrecognised name means no date constraint; the explicit bounds are then
// ignored.
func ParseRange(name string, start, end *time.Time) RangeSelector {
	kind, ok := rangeNames[name]
	if !ok {
		return NoRange()
	}
	if kind == RangeCustom {
		return Custom(start, end)
	}
	return RangeSelector{Kind: kind}
}

func (r RangeSelector) String() string {
	for name, kind := range rangeNames {
		if kind == r.Kind {
			return name
		}
	}
	return "none"
}

// resolve turns the selector into concrete bounds against a single now.
func (r RangeSelector) resolve(now time.Time) (*expense.DateRange, error) {
	now = now.UTC()
	switch r.Kind {
	case RangeNone:
		return nil, nil
	case RangeCustom:
		if r.Start == nil || r.End == nil {
			return nil, customerr.ErrMissingRangeBounds
		}
		return &expense.DateRange{From: r.Start.UTC(), To: r.End.UTC()}, nil
	}
	span, ok := rangeSpans[r.Kind]
	if !ok {
		return nil, customerr.Validation("rango", "unknown range")
	}
	return &expense.DateRange{From: now.Add(-span), To: now}, nil
}

// ListQuery is the caller's filter intent before resolution.
type ListQuery struct {
	OwnerID  uuid.UUID
	Range    RangeSelector
	Category *expense.Category
}

// BuildFilter resolves q into the owner-scoped predicate handed to storage.
func BuildFilter(q ListQuery, now time.Time) (expense.Filter, error) {
	dates, err := q.Range.resolve(now)
	if err != nil {
		return expense.Filter{}, err
	}
	return expense.Filter{
		OwnerID:  q.OwnerID,
		Category: q.Category,
		Range:    dates,
	}, nil
}

// Key names the query independently of when it runs, so relative ranges map
// to a stable cache entry.
func (q ListQuery) Key() string {
	parts := []string{q.Range.String()}
	if q.Range.Kind == RangeCustom {
		parts = append(parts, formatBound(q.Range.Start), formatBound(q.Range.End))
	}
	if q.Category != nil {
		parts = append(parts, string(*q.Category))
	}
	return strings.Join(parts, ":")
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
