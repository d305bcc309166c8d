// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/sec"
)

type ownedCourse string

func (c ownedCourse) OwnerID() string { return string(c) }

type enrollmentSet map[string]bool

func (s enrollmentSet) IsEnrolled(_ context.Context, userID, courseID string) (bool, error) {
	return s[userID+"/"+courseID], nil
}

/*
TestCanManageCourse covers the admin-or-owner rule for every role.
*/
func TestCanManageCourse(t *testing.T) {
	course := ownedCourse("instructor-1")

	tests := []struct {
		name      string
		principal *access.Principal
		allowed   bool
	}{
		{"owner_instructor", &access.Principal{UserID: "instructor-1", Role: sec.RoleInstructor}, true},
		{"other_instructor", &access.Principal{UserID: "instructor-2", Role: sec.RoleInstructor}, false},
		{"admin", &access.Principal{UserID: "admin-1", Role: sec.RoleAdmin}, true},
		{"learner", &access.Principal{UserID: "user-1", Role: sec.RoleUser}, false},
		{"anonymous", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, access.CanManageCourse(tt.principal, course))
			assert.Equal(t, tt.allowed, access.CanManageVideo(tt.principal, course))
			assert.Equal(t, tt.allowed, access.CanViewUnpublished(tt.principal, course))
		})
	}
}

/*
TestRoleChecks covers IsAdmin and CanAuthor.
*/
func TestRoleChecks(t *testing.T) {
	admin := &access.Principal{UserID: "a", Role: sec.RoleAdmin}
	instructor := &access.Principal{UserID: "i", Role: sec.RoleInstructor}
	learner := &access.Principal{UserID: "u", Role: sec.RoleUser}

	assert.True(t, access.IsAdmin(admin))
	assert.False(t, access.IsAdmin(instructor))
	assert.True(t, access.CanAuthor(admin))
	assert.True(t, access.CanAuthor(instructor))
	assert.False(t, access.CanAuthor(learner))
}

/*
TestRequire verifies that a failed predicate becomes a 403.
*/
func TestRequire(t *testing.T) {
	assert.NoError(t, access.Require(true, "nope"))

	err := access.Require(false, "Not allowed to manage this course")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestPolicy_CanReview requires an enrollment in the exact course.
*/
func TestPolicy_CanReview(t *testing.T) {
	policy := access.NewPolicy(enrollmentSet{"user-1/course-1": true})
	learner := &access.Principal{UserID: "user-1", Role: sec.RoleUser}

	allowed, err := policy.CanReview(context.Background(), learner, "course-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = policy.CanReview(context.Background(), learner, "course-2")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = policy.CanReview(context.Background(), nil, "course-1")
	require.NoError(t, err)
	assert.False(t, allowed)
}
