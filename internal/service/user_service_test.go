package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"follow-graph/internal/domain"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.CreateUser(ctx, "  alice  ")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = uuid.Parse(user.ID)
	assert.NoError(t, err, "assigned id should be a well-formed identifier")

	stored, err := f.userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
}

func TestCreateUserShortUsername(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.CreateUser(context.Background(), "ab")
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
}

func TestCreateUserDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, "alice")
	require.NoError(t, err)

	_, err = f.users.CreateUser(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}
