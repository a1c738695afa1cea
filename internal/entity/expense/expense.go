package expense

import (
	"time"

	"github.com/google/uuid"
)

type Record struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
}

// Patch carries the fields of a partial update. A nil pointer leaves the
// stored value untouched. Description can be cleared, so it has its own
// presence flag.
type Patch struct {
	Amount         *float64
	Category       *Category
	Date           *time.Time
	Description    *string
	SetDescription bool
}

func (p Patch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Date == nil && !p.SetDescription
}

// Apply returns rec with the patch fields written over it.
func (p Patch) Apply(rec Record) Record {
	if p.Amount != nil {
		rec.Amount = *p.Amount
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Date != nil {
		rec.Date = p.Date.UTC()
	}
	if p.SetDescription {
		rec.Description = p.Description
	}
	return rec
}
