// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/constants"
	"github.com/taibuivan/edustream/internal/platform/ctxutil"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/internal/platform/validate"
	"github.com/taibuivan/edustream/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and checking signed tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, role string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error)
	AccessTTL() time.Duration
}

// Options tunes the credential flows.
type Options struct {
	// ResetTTL is how long a password reset token stays valid.
	ResetTTL time.Duration
	// ExposeResetToken echoes the raw reset token in the response. Off unless EXPOSE_RESET_TOKEN is set.
	ExposeResetToken bool
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	options        Options
	now            func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, options Options) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		options:        options,
		now:            time.Now,
	}
}

// TokenPair is returned by registration and login.
type TokenPair struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

// AccessGrant is returned by a refresh. The refresh token itself is not rotated.
type AccessGrant struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// ResetRequest is the forgot-password acknowledgement.
type ResetRequest struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a brand new user account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *TokenPair: Created user plus access and refresh tokens
  - err: Conflict (if the email exists), validation or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*TokenPair, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		MaxLen(FieldName, name, MaxNameLength).
		Email(FieldEmail, email).
		MinLen(FieldPassword, input.Password, MinPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify email uniqueness. The unique index still guards concurrent registrations.
	if _, err := service.userRepository.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !isNotFound(err) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
		IsActive:     true,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered", slog.String("user_id", user.ID))

	return service.issuePair(user)
}

// # Authentication Flow

/*
Login validates user credentials and issues a token pair.

Returns:
  - *TokenPair: Access and refresh tokens with the public user view
  - err: Unauthorized for bad credentials, Forbidden for deactivated accounts
*/
func (service *Service) Login(context context.Context, email, password string) (*TokenPair, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	// bcrypt compares in constant time
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	if !user.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}

	return service.issuePair(user)
}

/*
RefreshAccessToken mints a new access token from a valid refresh token.

Description: The refresh token is verified, the account is re-checked, and only
a new access token is issued.

Returns:
  - *AccessGrant: New access token
  - err: Unauthorized ("Refresh token expired" / "Invalid refresh token"), Forbidden if deactivated
*/
func (service *Service) RefreshAccessToken(context context.Context, refreshToken string) (*AccessGrant, error) {
	claims, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		if isExpired(err) {
			return nil, apperr.Unauthorized("Refresh token expired")
		}
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}

	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_access_token_failed: %w", err))
	}

	return &AccessGrant{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(service.tokenProvider.AccessTTL().Seconds()),
	}, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a high-entropy token and persists only its SHA-256 hash
with a short expiry. Delivery of the raw token happens out of band.

Returns:
  - *ResetRequest: Confirmation message (plus the raw token in development)
  - err: NotFound if no account uses the email
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (*ResetRequest, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	token, err := sec.GenerateSecureToken(constants.ResetTokenBytes)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_generate_reset_token_failed: %w", err))
	}

	expiresAt := service.now().Add(service.options.ResetTTL)
	if err := service.userRepository.SetResetToken(context, user.ID, sec.HashToken(token), expiresAt); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "password_reset_requested", slog.String("user_id", user.ID))

	response := &ResetRequest{Message: ResetRequestedMessage}
	if service.options.ExposeResetToken {
		response.ResetToken = token
	}

	return response, nil
}

/*
CompletePasswordReset finishes the forgot-password flow.

Description: The presented token is hashed and matched against an unexpired
stored hash. On success the password is replaced and the reset fields cleared.

Returns:
  - err: BadRequest for unknown or expired tokens, validation errors for weak passwords
*/
func (service *Service) CompletePasswordReset(context context.Context, rawToken, newPassword string) error {
	if err := (&validate.Validator{}).MinLen(FieldPassword, newPassword, MinPasswordLength).Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByResetToken(context, sec.HashToken(rawToken), service.now())
	if err != nil {
		if isNotFound(err) {
			return apperr.BadRequest("Invalid or expired reset token")
		}
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_reset_password_hash_failed: %w", err))
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "password_reset_completed", slog.String("user_id", user.ID))
	return nil
}

// # Principal Resolution

/*
LoadPrincipal resolves the acting user for a verified token.

Returns:
  - *access.Principal: Identity with the role currently stored
  - err: Unauthorized if the user is gone, Forbidden if deactivated
*/
func (service *Service) LoadPrincipal(context context.Context, userID string) (*access.Principal, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		if isNotFound(err) || isBadRequest(err) {
			return nil, apperr.Unauthorized("User no longer exists")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}

	return user.Principal(), nil
}

// # Helpers

func (service *Service) issuePair(user *User) (*TokenPair, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_generation_failed: %w", err))
	}

	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_token_failed: %w", err))
	}

	return &TokenPair{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(service.tokenProvider.AccessTTL().Seconds()),
	}, nil
}

func isNotFound(err error) bool {
	return apperr.HasCode(err, apperr.CodeNotFound)
}

func isBadRequest(err error) bool {
	return apperr.HasCode(err, apperr.CodeBadRequest)
}

func isExpired(err error) bool {
	return errors.Is(err, sec.ErrTokenExpired)
}
