package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/entity/user"
	"max.ks1230/expenses-api/internal/logger"
	"max.ks1230/expenses-api/internal/model/customerr"
)

type userStorage interface {
	GetUserByEmail(ctx context.Context, email string) (user.Record, error)
	CreateUser(ctx context.Context, rec user.Record) error
}

type passwordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Service struct {
	storage userStorage
	hasher  passwordHasher
	codec   TokenCodec
	now     func() time.Time
}

func NewService(storage userStorage, hasher passwordHasher, codec TokenCodec) *Service {
	return &Service{
		storage: storage,
		hasher:  hasher,
		codec:   codec,
		now:     time.Now,
	}
}

// Register creates a user and does not log them in.
//
// The existence check and the insert are two statements; two concurrent
// registrations of the same email are settled by the storage unique
// constraint, which surfaces as ErrDuplicateEmail as well.
func (s *Service) Register(ctx context.Context, email, password string) (summary user.Summary, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "auth.Register")
	defer func() {
		if err != nil && !errors.Is(err, customerr.ErrDuplicateEmail) {
			ext.Error.Set(span, true)
		}
		span.Finish()
	}()

	email = user.NormalizeEmail(email)

	_, err = s.storage.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return user.Summary{}, customerr.ErrDuplicateEmail
	case !errors.Is(err, customerr.ErrUserNotFound):
		return user.Summary{}, errors.Wrap(err, "register")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user.Summary{}, errors.Wrap(err, "register")
	}

	rec := user.Record{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err = s.storage.CreateUser(ctx, rec); err != nil {
		if errors.Is(err, customerr.ErrDuplicateEmail) {
			return user.Summary{}, err
		}
		return user.Summary{}, errors.Wrap(err, "register")
	}

	logger.Info("user registered", zap.Stringer("userID", rec.ID))
	return rec.Summary(), nil
}

// Login never tells an unknown email apart from a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (token AccessToken, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "auth.Login")
	defer span.Finish()

	rec, err := s.storage.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, customerr.ErrUserNotFound) {
			return AccessToken{}, customerr.ErrInvalidCredentials
		}
		ext.Error.Set(span, true)
		return AccessToken{}, errors.Wrap(err, "login")
	}
	if !s.hasher.Verify(password, rec.PasswordHash) {
		return AccessToken{}, customerr.ErrInvalidCredentials
	}

	signed, err := s.codec.Issue(rec.ID.String(), s.now())
	if err != nil {
		ext.Error.Set(span, true)
		return AccessToken{}, errors.Wrap(err, "login")
	}
	return AccessToken{AccessToken: signed, TokenType: "bearer"}, nil
}
