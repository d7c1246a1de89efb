package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/testutil"
)

func TestGormRepo_CreateAndFind(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	ctx := context.Background()

	created, err := r.Create(ctx, "a@x.com", "Ann", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "Ann", created.Name)
	assert.Equal(t, "hash", created.PasswordHash)

	byEmail, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestGormRepo_FindMissing(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	ctx := context.Background()

	u, err := r.FindByEmail(ctx, "nobody@x.com")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrUserNotFound)

	u, err = r.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGormRepo_Create_DuplicateEmail(t *testing.T) {
	gdb := testutil.InitTestDB(t)
	r := New(gdb)
	ctx := context.Background()

	_, err := r.Create(ctx, "a@x.com", "Ann", "hash")
	require.NoError(t, err)

	u, err := r.Create(ctx, "a@x.com", "Other", "hash2")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var count int64
	require.NoError(t, gdb.Model(&models.User{}).Where("email = ?", "a@x.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormRepo_Ping(t *testing.T) {
	r := New(testutil.InitTestDB(t))
	require.NoError(t, r.Ping(context.Background()))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
