package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"max.ks1230/expenses-api/internal/model/customerr"
)

const bearerScheme = "bearer"

// IdentityExtractor turns an Authorization header into the acting user's id.
// The id is not looked up in the credential store: a token stays valid until
// it expires even if its user is gone.
type IdentityExtractor struct {
	codec TokenCodec
}

func NewIdentityExtractor(codec TokenCodec) *IdentityExtractor {
	return &IdentityExtractor{codec: codec}
}

func (e *IdentityExtractor) Extract(header string, now time.Time) (uuid.UUID, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || !strings.EqualFold(scheme, bearerScheme) {
		return uuid.Nil, customerr.ErrMissingCredential
	}

	subject, err := e.codec.Verify(token, now)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, customerr.ErrInvalidToken
	}
	return id, nil
}
