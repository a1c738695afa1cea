package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Record struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Summary is what registration hands back to the caller.
type Summary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

func (r Record) Summary() Summary {
	return Summary{ID: r.ID, Email: r.Email}
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
