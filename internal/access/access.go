// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access resolves whether an acting principal may perform an action on a
course or one of its videos.

Every mutating service operation evaluates exactly one predicate from this
package before touching storage. A failed predicate is always reported as
[apperr.Forbidden]; it never degrades into a silent no-op.

Predicates:

  - IsAdmin: role changes and account administration.
  - CanAuthor: course creation (instructor or admin).
  - CanManageCourse / CanManageVideo / CanViewUnpublished: admin or owning instructor.
  - Policy.CanReview: active enrollment in the course.
*/
package access

import (
	"context"

	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/sec"
)

// Principal is the authenticated identity making a request.
//
// It is loaded from storage for every authenticated request, so Role reflects
// the current account state rather than the role at token issuance.
type Principal struct {
	UserID string       `json:"id"`
	Role   sec.UserRole `json:"role"`
}

// Owned is implemented by resources that carry an owning instructor.
type Owned interface {
	OwnerID() string
}

// IsAdmin reports whether the principal holds the admin role.
func IsAdmin(principal *Principal) bool {
	return principal != nil && principal.Role == sec.RoleAdmin
}

// CanAuthor reports whether the principal may create new courses.
func CanAuthor(principal *Principal) bool {
	return principal != nil && principal.Role.AtLeast(sec.RoleInstructor)
}

// CanManageCourse is true iff the principal is an admin or the course's instructor.
func CanManageCourse(principal *Principal, course Owned) bool {
	if principal == nil || course == nil {
		return false
	}
	return IsAdmin(principal) || principal.UserID == course.OwnerID()
}

// CanManageVideo applies the course rule through the video's parent course.
func CanManageVideo(principal *Principal, parent Owned) bool {
	return CanManageCourse(principal, parent)
}

// CanViewUnpublished reports whether unpublished content is visible to the principal.
func CanViewUnpublished(principal *Principal, course Owned) bool {
	return CanManageCourse(principal, course)
}

// Require converts a failed predicate into a Forbidden error.
func Require(allowed bool, message string) error {
	if !allowed {
		return apperr.Forbidden(message)
	}
	return nil
}

// # Relationship-based checks

// EnrollmentLookup answers whether a user is enrolled in a course.
type EnrollmentLookup interface {
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}

// Policy evaluates predicates that need one storage lookup.
type Policy struct {
	enrollments EnrollmentLookup
}

// NewPolicy constructs a [Policy] backed by the enrollment ledger.
func NewPolicy(enrollments EnrollmentLookup) *Policy {
	return &Policy{enrollments: enrollments}
}

// CanReview is true iff the principal has an enrollment in the course.
func (policy *Policy) CanReview(ctx context.Context, principal *Principal, courseID string) (bool, error) {
	if principal == nil {
		return false, nil
	}
	return policy.enrollments.IsEnrolled(ctx, principal.UserID, courseID)
}
