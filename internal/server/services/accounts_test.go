package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenAuthenticate(t *testing.T) {
	s := newTestAccountService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "x@y.com", "pw")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.True(t, strings.HasPrefix(u.Password, "$argon2id$"), "password must be stored hashed")

	got, err := s.Authenticate(ctx, "x@y.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "x@y.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody@y.com", "pw")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestAccountService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "x@y.com", "pw")
	require.NoError(t, err)

	_, err = s.Register(ctx, "x@y.com", "other")
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)

	_, err = s.Register(ctx, "  X@Y.com ", "other")
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail, "emails are compared case-insensitively")
}

func TestRegister_RequiresFields(t *testing.T) {
	s := newTestAccountService(t)

	_, err := s.Register(context.Background(), " ", "pw")
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.Register(context.Background(), "x@y.com", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLoadSessionAccount(t *testing.T) {
	s := newTestAccountService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "x@y.com", "pw")
	require.NoError(t, err)

	got, err := s.LoadSessionAccount(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "x@y.com", got.Email)

	none, err := s.LoadSessionAccount(ctx, u.ID+100)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAPITokenRoundTrip(t *testing.T) {
	s := newTestAccountService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "x@y.com", "pw")
	require.NoError(t, err)

	_, err = s.IssueAPIToken(ctx, "x@y.com", "nope")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)

	token, err := s.IssueAPIToken(ctx, "x@y.com", "pw")
	require.NoError(t, err)

	got, err := s.AccountFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.AccountFromToken(ctx, token+"x")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
