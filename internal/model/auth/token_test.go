package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expenses-api/internal/model/customerr"
)

var issuedAt = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type staticTokenConfig struct {
	secret string
	ttl    time.Duration
}

func (c staticTokenConfig) Secret() []byte {
	return []byte(c.secret)
}

func (c staticTokenConfig) TokenTTL() time.Duration {
	return c.ttl
}

func newTestCodec() *JWTCodec {
	return NewJWTCodec(staticTokenConfig{secret: "test-secret-0123456789", ttl: time.Hour})
}

func Test_JWTCodec_ShouldRoundTripSubject(t *testing.T) {
	codec := newTestCodec()
	subject := uuid.New().String()

	token, err := codec.Issue(subject, issuedAt)
	require.NoError(t, err)

	got, err := codec.Verify(token, issuedAt.Add(59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func Test_JWTCodec_ShouldExpireAtTTL(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.Issue("subject", issuedAt)
	require.NoError(t, err)

	_, err = codec.Verify(token, issuedAt.Add(codec.TTL()))
	assert.ErrorIs(t, err, customerr.ErrExpiredToken)

	_, err = codec.Verify(token, issuedAt.Add(2*codec.TTL()))
	assert.ErrorIs(t, err, customerr.ErrExpiredToken)
}

func Test_JWTCodec_ShouldRejectTamperedToken(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.Issue("subject", issuedAt)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered, issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)

	_, err = codec.Verify("not-a-token", issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)
}

func Test_JWTCodec_ShouldRejectOtherSecret(t *testing.T) {
	other := NewJWTCodec(staticTokenConfig{secret: "another-secret-0123456789", ttl: time.Hour})
	token, err := other.Issue("subject", issuedAt)
	require.NoError(t, err)

	_, err = newTestCodec().Verify(token, issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)
}

func Test_JWTCodec_ShouldRejectOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "subject",
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret-0123456789"))
	require.NoError(t, err)
	_, err = newTestCodec().Verify(hs384, issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newTestCodec().Verify(none, issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)
}

func Test_JWTCodec_ShouldRequireSubjectAndExpiry(t *testing.T) {
	secret := []byte("test-secret-0123456789")

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = newTestCodec().Verify(noSub, issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "subject",
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = newTestCodec().Verify(noExp, issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)
}
