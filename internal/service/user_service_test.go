package service

import (
	"context"
	"studylife-go/internal/repository"
	"studylife-go/pkg/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterLoginRefresh(t *testing.T) {
	db := newTestDB(t)
	jwt := token.NewJWTManager("test-secret", 1, 1)
	svc := NewUserService(repository.NewUserRepository(db), jwt)
	ctx := context.Background()

	u, err := svc.Register(ctx, " uma ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "uma", u.Username)
	assert.NotEqual(t, "password1", u.Password)

	_, err = svc.Register(ctx, "uma", "other-pass")
	assert.ErrorIs(t, err, ErrUserExists)

	_, _, err = svc.Login(ctx, "uma", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	access, refresh, err := svc.Login(ctx, "uma", "password1")
	require.NoError(t, err)
	claims, err := jwt.VerifyToken(access, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	// access token 不能用于刷新
	_, _, err = svc.RefreshToken(ctx, access)
	assert.Error(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)

	profile, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "uma", profile.Username)

	_, err = svc.GetProfile(ctx, 9999)
	assert.True(t, IsNotFound(err))
}
