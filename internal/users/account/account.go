// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management and user administration.

It lets members view and update their own identity data and change their
password, exposes their enrollments, and gives administrators control over
roles and account status.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Ledger: Enrollment routes delegate to the learning package.
  - Security: Role and status changes require an admin principal.
*/
package account

import (
	"context"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/learning"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/internal/users/auth"
	"github.com/taibuivan/edustream/pkg/pagination"
)

// Field names reported in validation details.
const (
	FieldRole            = "role"
	FieldIsActive        = "isActive"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
)

// # Query Types

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role   sec.UserRole
	Search string
}

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		UpdateProfile modifies the mutable profile fields (name, email).

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: apperr.Conflict on duplicate email, or storage failures
	*/
	UpdateProfile(context context.Context, user *auth.User) error

	/*
		UpdatePassword replaces the password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Storage failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		List returns one page of users and the total match count.

		Parameters:
		  - context: context.Context
		  - filter: UserFilter
		  - params: pagination.Params

		Returns:
		  - []*auth.User: Page of users
		  - int: Total number of matching users
		  - error: Storage failures
	*/
	List(context context.Context, filter UserFilter, params pagination.Params) ([]*auth.User, int, error)

	/*
		UpdateRole sets a user's role.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: sec.UserRole

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	UpdateRole(context context.Context, userID string, role sec.UserRole) error

	/*
		UpdateActive activates or deactivates a user.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - active: bool

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	UpdateActive(context context.Context, userID string, active bool) error
}

// # Collaborators

// Ledger is the slice of the learning service exposed under /users.
type Ledger interface {
	Enroll(ctx context.Context, principal *access.Principal, courseID string) (*learning.Enrollment, error)
	EnrolledCourses(ctx context.Context, principal *access.Principal) ([]learning.EnrolledCourse, error)
	CourseProgress(ctx context.Context, principal *access.Principal, courseID string) (int, error)
	TrackCourseProgress(ctx context.Context, principal *access.Principal, courseID, videoID string, progress int) (*learning.ProgressUpdate, error)
}
