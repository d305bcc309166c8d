// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/sec"
)

// # Fakes

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]*User{}}
}

func (repository *memoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if user, ok := repository.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, user := range repository.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryUserRepository) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, user := range repository.users {
		if user.ResetTokenHash != nil && *user.ResetTokenHash == tokenHash && user.ResetTokenExpiresAt.After(now) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Reset token")
}

func (repository *memoryUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, existing := range repository.users {
		if existing.Email == user.Email {
			return apperr.Conflict("Email already exists")
		}
	}
	copied := *user
	repository.users[user.ID] = &copied
	return nil
}

func (repository *memoryUserRepository) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user := repository.users[userID]
	user.ResetTokenHash = &tokenHash
	user.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (repository *memoryUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user := repository.users[userID]
	user.PasswordHash = newHash
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryUserRepository, *sec.TokenService) {
	t.Helper()
	tokens, err := sec.NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	repository := newMemoryUserRepository()
	service := NewService(repository, tokens, Options{ResetTTL: 10 * time.Minute, ExposeResetToken: true})
	return service, repository, tokens
}

func code(err error) string {
	if appError := apperr.As(err); appError != nil {
		return appError.Code
	}
	return ""
}

// # Registration & Login

/*
TestService_Register creates a normal active user and rejects duplicate emails.
*/
func TestService_Register(t *testing.T) {
	service, repository, tokens := newTestService(t)
	ctx := context.Background()

	pair, err := service.Register(ctx, RegisterInput{Name: "Ana", Email: "  Ana@Example.COM ", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", pair.User.Email)
	assert.Equal(t, sec.RoleUser, pair.User.Role)
	assert.True(t, pair.User.IsActive)
	assert.NotEqual(t, "secret1", repository.users[pair.User.ID].PasswordHash)

	claims, err := tokens.VerifyToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID, claims.UserID)

	_, err = tokens.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	// Same address with different casing is still a duplicate
	_, err = service.Register(ctx, RegisterInput{Name: "Ana 2", Email: "ANA@example.com", Password: "secret2"})
	assert.Equal(t, apperr.CodeConflict, code(err))
}

/*
TestService_Register_Validation rejects short passwords and bad emails.
*/
func TestService_Register_Validation(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), RegisterInput{Name: "", Email: "nope", Password: "123"})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 3)
}

/*
TestService_Login covers unknown email, wrong password and deactivated accounts.
*/
func TestService_Login(t *testing.T) {
	service, repository, _ := newTestService(t)
	ctx := context.Background()

	pair, err := service.Register(ctx, RegisterInput{Name: "Ben", Email: "ben@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = service.Login(ctx, "BEN@example.com", "secret1")
	require.NoError(t, err)

	_, err = service.Login(ctx, "ghost@example.com", "secret1")
	assert.Equal(t, "UNAUTHORIZED", code(err))

	_, err = service.Login(ctx, "ben@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", code(err))

	repository.users[pair.User.ID].IsActive = false
	_, err = service.Login(ctx, "ben@example.com", "secret1")
	assert.Equal(t, apperr.CodeForbidden, code(err))
}

// # Refresh

/*
TestService_RefreshAccessToken issues only a new access token and re-checks activity.
*/
func TestService_RefreshAccessToken(t *testing.T) {
	service, repository, tokens := newTestService(t)
	ctx := context.Background()

	pair, err := service.Register(ctx, RegisterInput{Name: "Cy", Email: "cy@example.com", Password: "secret1"})
	require.NoError(t, err)

	grant, err := service.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := tokens.VerifyToken(grant.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID, claims.UserID)

	// The refresh token keeps working because it is not rotated
	_, err = service.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// An access token is not a refresh token
	_, err = service.RefreshAccessToken(ctx, pair.AccessToken)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "Invalid refresh token", appError.Message)

	repository.users[pair.User.ID].IsActive = false
	_, err = service.RefreshAccessToken(ctx, pair.RefreshToken)
	assert.Equal(t, apperr.CodeForbidden, code(err))
}

// # Password Reset

/*
TestService_PasswordReset stores only the hash, honors expiry and clears the fields.
*/
func TestService_PasswordReset(t *testing.T) {
	service, repository, _ := newTestService(t)
	ctx := context.Background()

	pair, err := service.Register(ctx, RegisterInput{Name: "Di", Email: "di@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = service.RequestPasswordReset(ctx, "nobody@example.com")
	assert.Equal(t, apperr.CodeNotFound, code(err))

	result, err := service.RequestPasswordReset(ctx, "di@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, result.ResetToken)

	stored := repository.users[pair.User.ID]
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, result.ResetToken, *stored.ResetTokenHash)
	assert.Equal(t, sec.HashToken(result.ResetToken), *stored.ResetTokenHash)

	assert.Equal(t, apperr.CodeBadRequest, code(service.CompletePasswordReset(ctx, "bogus", "newpass1")))

	require.NoError(t, service.CompletePasswordReset(ctx, result.ResetToken, "newpass1"))
	assert.Nil(t, repository.users[pair.User.ID].ResetTokenHash)

	_, err = service.Login(ctx, "di@example.com", "newpass1")
	require.NoError(t, err)

	// A consumed token cannot be replayed
	assert.Equal(t, apperr.CodeBadRequest, code(service.CompletePasswordReset(ctx, result.ResetToken, "again12")))
}

/*
TestService_PasswordReset_Expired rejects tokens older than the reset TTL.
*/
func TestService_PasswordReset_Expired(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Name: "Ed", Email: "ed@example.com", Password: "secret1"})
	require.NoError(t, err)

	result, err := service.RequestPasswordReset(ctx, "ed@example.com")
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	assert.Equal(t, apperr.CodeBadRequest, code(service.CompletePasswordReset(ctx, result.ResetToken, "newpass1")))
}

/*
TestService_RequestPasswordReset_HidesTokenOutsideDevelopment never echoes the raw token.
*/
func TestService_RequestPasswordReset_HidesTokenOutsideDevelopment(t *testing.T) {
	service, _, _ := newTestService(t)
	service.options.ExposeResetToken = false
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Name: "Fa", Email: "fa@example.com", Password: "secret1"})
	require.NoError(t, err)

	result, err := service.RequestPasswordReset(ctx, "fa@example.com")
	require.NoError(t, err)
	assert.Empty(t, result.ResetToken)
	assert.Equal(t, ResetRequestedMessage, result.Message)
}

// # Principal

/*
TestService_LoadPrincipal reads the stored role and rejects missing or inactive users.
*/
func TestService_LoadPrincipal(t *testing.T) {
	service, repository, _ := newTestService(t)
	ctx := context.Background()

	pair, err := service.Register(ctx, RegisterInput{Name: "Gi", Email: "gi@example.com", Password: "secret1"})
	require.NoError(t, err)

	repository.users[pair.User.ID].Role = sec.RoleInstructor
	principal, err := service.LoadPrincipal(ctx, pair.User.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleInstructor, principal.Role)

	_, err = service.LoadPrincipal(ctx, "missing")
	assert.Equal(t, "UNAUTHORIZED", code(err))

	repository.users[pair.User.ID].IsActive = false
	_, err = service.LoadPrincipal(ctx, pair.User.ID)
	assert.Equal(t, apperr.CodeForbidden, code(err))
}
