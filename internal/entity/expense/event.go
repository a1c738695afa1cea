package expense

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated EventType = "expense.created"
	EventUpdated EventType = "expense.updated"
	EventDeleted EventType = "expense.deleted"
)

// Event is published after an expense changed. Expense is nil for deletions.
type Event struct {
	Type       EventType `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	Expense    *Record   `json:"expense,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, userID, expenseID uuid.UUID, rec *Record, at time.Time) Event {
	return Event{
		Type:       t,
		UserID:     userID,
		ExpenseID:  expenseID,
		Expense:    rec,
		OccurredAt: at.UTC(),
	}
}
