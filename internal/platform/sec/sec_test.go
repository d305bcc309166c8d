// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	service, err := NewTokenService("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies that both token kinds verify with their own secret.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t)

	access, err := service.GenerateAccessToken("user-1", "instructor")
	require.NoError(t, err)

	claims, err := service.VerifyToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "instructor", claims.Role)

	refresh, err := service.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err = service.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

/*
TestTokenService_TypesAreNotInterchangeable ensures a refresh token is no bearer token.
*/
func TestTokenService_TypesAreNotInterchangeable(t *testing.T) {
	service := newTestTokenService(t)

	refresh, err := service.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	_, err = service.VerifyToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	access, err := service.GenerateAccessToken("user-1", "user")
	require.NoError(t, err)
	_, err = service.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

/*
TestTokenService_ExpiredVsInvalid checks the two failure kinds stay distinguishable.
*/
func TestTokenService_ExpiredVsInvalid(t *testing.T) {
	service := newTestTokenService(t)

	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := service.GenerateAccessToken("user-1", "user")
	require.NoError(t, err)
	service.now = time.Now

	_, err = service.VerifyToken(stale)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = service.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	fresh, err := service.GenerateAccessToken("user-1", "user")
	require.NoError(t, err)
	tampered := fresh[:strings.LastIndex(fresh, ".")] + ".c2lnbmF0dXJl"
	_, err = service.VerifyToken(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

/*
TestHashPassword confirms bcrypt hashing never returns the raw password.
*/
func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

/*
TestSecureToken checks entropy length and hash determinism.
*/
func TestSecureToken(t *testing.T) {
	first, err := GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
	assert.Equal(t, HashToken(first), HashToken(first))
	assert.NotEqual(t, first, HashToken(first))
}

/*
TestUserRole_AtLeast covers the three-role hierarchy.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleInstructor))
	assert.True(t, RoleInstructor.AtLeast(RoleInstructor))
	assert.False(t, RoleUser.AtLeast(RoleInstructor))
	assert.False(t, UserRole("moderator").IsValid())
}
