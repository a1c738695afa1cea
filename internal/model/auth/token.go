package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"max.ks1230/expenses-api/internal/model/customerr"
)

// TokenCodec issues and verifies stateless access tokens.
type TokenCodec interface {
	Issue(subject string, now time.Time) (string, error)
	Verify(token string, now time.Time) (string, error)
}

type tokenConfig interface {
	Secret() []byte
	TokenTTL() time.Duration
}

// JWTCodec signs {sub, exp} with HS256.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTCodec(config tokenConfig) *JWTCodec {
	return &JWTCodec{
		secret: config.Secret(),
		ttl:    config.TokenTTL(),
	}
}

func (c *JWTCodec) TTL() time.Duration {
	return c.ttl
}

func (c *JWTCodec) Issue(subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// Verify returns the subject. Expiry is reported as ErrExpiredToken, every
// other failure as ErrInvalidToken.
func (c *JWTCodec) Verify(token string, now time.Time) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, c.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", customerr.ErrExpiredToken
	case err != nil:
		return "", customerr.ErrInvalidToken
	case claims.Subject == "":
		return "", customerr.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (c *JWTCodec) key(*jwt.Token) (interface{}, error) {
	return c.secret, nil
}
