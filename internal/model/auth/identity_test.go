package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expenses-api/internal/model/customerr"
)

func Test_Extract_ShouldReturnSubjectID(t *testing.T) {
	codec := newTestCodec()
	id := uuid.New()
	token, err := codec.Issue(id.String(), issuedAt)
	require.NoError(t, err)

	extractor := NewIdentityExtractor(codec)
	for _, header := range []string{"Bearer " + token, "bearer " + token, "  BEARER   " + token + " "} {
		got, err := extractor.Extract(header, issuedAt)
		require.NoError(t, err, header)
		assert.Equal(t, id, got)
	}
}

func Test_Extract_ShouldReportMissingCredential(t *testing.T) {
	extractor := NewIdentityExtractor(newTestCodec())

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic dXNlcjpwYXNz", "token"} {
		_, err := extractor.Extract(header, issuedAt)
		assert.ErrorIs(t, err, customerr.ErrMissingCredential, header)
	}
}

func Test_Extract_ShouldPassThroughTokenErrors(t *testing.T) {
	codec := newTestCodec()
	extractor := NewIdentityExtractor(codec)

	token, err := codec.Issue(uuid.NewString(), issuedAt)
	require.NoError(t, err)

	_, err = extractor.Extract("Bearer "+token, issuedAt.Add(time.Hour))
	assert.ErrorIs(t, err, customerr.ErrExpiredToken)

	_, err = extractor.Extract("Bearer garbage", issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)
}

func Test_Extract_ShouldRejectNonUUIDSubject(t *testing.T) {
	codec := newTestCodec()
	token, err := codec.Issue("alice", issuedAt)
	require.NoError(t, err)

	_, err = NewIdentityExtractor(codec).Extract("Bearer "+token, issuedAt)
	assert.ErrorIs(t, err, customerr.ErrInvalidToken)
}
