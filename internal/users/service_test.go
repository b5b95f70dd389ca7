package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/kickstock-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}

func TestCreateAndGetUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{Email: "  Seller@Example.com ", Properties: map[string]any{"tier": "gold"}})
	require.NoError(t, err)
	assert.Equal(t, "seller@example.com", created.Email)
	assert.True(t, created.Active)
	assert.NotZero(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, "gold", got.Properties["tier"])
}

func TestCreateUserRejectsInvalidEmail(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), CreateUserInput{Email: "not-an-email"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), CreateUserInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Email: "dup@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserInput{Email: "DUP@example.com"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestGetUserNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Get(context.Background(), 404)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Get(context.Background(), 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
