package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api/dto"
	"storefront/internal/middleware"
	"storefront/internal/model"
)

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()

	resp, err := svc.users.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Password: "s3cret-pass",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)

	claims, err := middleware.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.False(t, claims.IsAdmin())

	_, err = svc.users.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.users.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.users.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.users.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// access token 不能当 refresh token 用
	_, err = svc.users.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserService_Duplicates(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()

	admin, err := svc.users.CreateAdmin(ctx, "root", "admin-pass", "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role())

	_, err = svc.users.Register(ctx, &dto.RegisterRequest{Username: "root", Password: "password1", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.users.Register(ctx, &dto.RegisterRequest{Username: "other", Password: "password1", Email: "root@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}
