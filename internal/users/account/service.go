// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/learning"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/internal/platform/validate"
	"github.com/taibuivan/edustream/internal/users/auth"
	"github.com/taibuivan/edustream/pkg/pagination"
)

// # Service Layer

// Service orchestrates profile management and user administration.
type Service struct {
	accountRepository AccountRepository
	ledger            Ledger
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo AccountRepository, ledger Ledger, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		ledger:            ledger,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

/*
UpdateProfile applies a partial set of changes to a user's identity data.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage. A taken email surfaces as
Conflict from the unique index.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Validation, conflict or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	validator := &validate.Validator{}

	// Apply delta updates
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		validator.Required(auth.FieldName, name).MaxLen(auth.FieldName, name, auth.MaxNameLength)
		user.Name = name
	}

	if input.Email != nil {
		email := auth.NormalizeEmail(*input.Email)
		validator.Email(auth.FieldEmail, email)
		user.Email = email
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.accountRepository.UpdateProfile(context, user); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

/*
ChangePassword replaces the password after verifying the current one.

Returns:
  - error: Unauthorized (wrong current password), validation or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_change_password_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	validator := &validate.Validator{}
	validator.MinLen(FieldNewPassword, newPassword, auth.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	hashed, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	if err := service.accountRepository.UpdatePassword(context, userID, hashed); err != nil {
		return fmt.Errorf("account_service_change_password_failed: %w", err)
	}

	service.logger.Info("user_password_changed", slog.String("user_id", userID))

	return nil
}

// # Enrollment Delegates

// Enroll adds the principal to a published course.
func (service *Service) Enroll(context context.Context, principal *access.Principal, courseID string) (*learning.Enrollment, error) {
	return service.ledger.Enroll(context, principal, courseID)
}

// EnrolledCourses lists the principal's courses with progress.
func (service *Service) EnrolledCourses(context context.Context, principal *access.Principal) ([]learning.EnrolledCourse, error) {
	return service.ledger.EnrolledCourses(context, principal)
}

// CourseProgress recomputes the principal's progress in a course.
func (service *Service) CourseProgress(context context.Context, principal *access.Principal, courseID string) (int, error) {
	return service.ledger.CourseProgress(context, principal, courseID)
}

/*
TrackCourseProgress stores the principal's progress on one video of a course.

Returns:
  - *learning.ProgressUpdate: Video progress plus the recomputed course percentage
  - error: BadRequest when the video belongs to another course, Forbidden when not enrolled
*/
func (service *Service) TrackCourseProgress(context context.Context, principal *access.Principal, courseID, videoID string, progress int) (*learning.ProgressUpdate, error) {
	return service.ledger.TrackCourseProgress(context, principal, courseID, videoID, progress)
}

// # Administration

/*
ListUsers returns one page of accounts for an administrator.

Returns:
  - []*auth.User: Page of accounts
  - int: Total match count
  - error: Forbidden (non-admin), BadRequest (unknown role filter)
*/
func (service *Service) ListUsers(context context.Context, principal *access.Principal, filter UserFilter, params pagination.Params) ([]*auth.User, int, error) {
	if err := access.Require(access.IsAdmin(principal), "Admin access required"); err != nil {
		return nil, 0, err
	}

	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, 0, apperr.BadRequest("Unknown role filter")
	}

	users, total, err := service.accountRepository.List(context, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}

	return users, total, nil
}

/*
ChangeRole assigns a new role to a user.

Description: The change is visible on the target's next request because the
principal is reloaded from storage on every call.

Returns:
  - *auth.User: The updated account
  - error: Forbidden (non-admin), ValidationError (unknown role), NotFound
*/
func (service *Service) ChangeRole(context context.Context, principal *access.Principal, userID string, role sec.UserRole) (*auth.User, error) {
	if err := access.Require(access.IsAdmin(principal), "Admin access required"); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldRole, string(role), sec.Roles()...)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.accountRepository.UpdateRole(context, userID, role); err != nil {
		return nil, fmt.Errorf("account_service_change_role_failed: %w", err)
	}

	service.logger.Warn("user_role_changed",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
		slog.String("by", principal.UserID),
	)

	return service.accountRepository.FindByID(context, userID)
}

/*
SetActive activates or deactivates an account.

Returns:
  - *auth.User: The updated account
  - error: Forbidden (non-admin), BadRequest (self-deactivation), NotFound
*/
func (service *Service) SetActive(context context.Context, principal *access.Principal, userID string, active bool) (*auth.User, error) {
	if err := access.Require(access.IsAdmin(principal), "Admin access required"); err != nil {
		return nil, err
	}

	if !active && principal.UserID == userID {
		return nil, apperr.BadRequest("You cannot deactivate your own account")
	}

	if err := service.accountRepository.UpdateActive(context, userID, active); err != nil {
		return nil, fmt.Errorf("account_service_set_active_failed: %w", err)
	}

	service.logger.Warn("user_status_changed",
		slog.String("user_id", userID),
		slog.Bool("active", active),
		slog.String("by", principal.UserID),
	)

	return service.accountRepository.FindByID(context, userID)
}
