package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository/memory"
)

func TestGetProfile(t *testing.T) {
	users := memory.NewUserRepository()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{Email: "a@x.com", PasswordHash: "h"}))
	stored, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)

	uc := New(users, nil)

	got, err := uc.GetProfile(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicUser{ID: stored.ID, Email: "a@x.com"}, got)

	_, err = uc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
