// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package learning

import (
	"context"
	"time"
)

// # Ledger Data Access

// Repository defines the persistence contract for enrollments and view history.
type Repository interface {

	/*
		Enroll records a new enrollment and bumps the course's enrollment counter
		in one transaction.

		Parameters:
		  - context: context.Context
		  - enrollment: *Enrollment

		Returns:
		  - error: ErrCourseUnavailable, ErrAlreadyEnrolled or persistence failures
	*/
	Enroll(context context.Context, enrollment *Enrollment) error

	/*
		IsEnrolled reports whether the user holds an enrollment in the course.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - courseID: string

		Returns:
		  - bool: True when enrolled
		  - error: Database retrieval failures
	*/
	IsEnrolled(context context.Context, userID, courseID string) (bool, error)

	/*
		ListEnrolled returns the user's enrollments with their course summaries,
		most recent first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []EnrolledCourse: Possibly empty list
		  - error: Database retrieval failures
	*/
	ListEnrolled(context context.Context, userID string) ([]EnrolledCourse, error)

	/*
		FindVideoCourse resolves the course a video belongs to.

		Parameters:
		  - context: context.Context
		  - videoID: string

		Returns:
		  - string: Course ID
		  - error: apperr.NotFound or database errors
	*/
	FindVideoCourse(context context.Context, videoID string) (string, error)

	/*
		UpsertView writes the user's single view-history entry for a video.

		Parameters:
		  - context: context.Context
		  - entry: *ViewEntry

		Returns:
		  - error: Persistence failures
	*/
	UpsertView(context context.Context, entry *ViewEntry) error

	/*
		CountCompletion counts the course's videos and those the user completed.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - courseID: string

		Returns:
		  - total: Number of videos in the course
		  - completed: Number of those with a completed view entry for the user
		  - error: Database retrieval failures
	*/
	CountCompletion(context context.Context, userID, courseID string) (total int, completed int, err error)

	/*
		SetCourseProgress stores the recomputed percentage and refreshes last-accessed.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - courseID: string
		  - progress: int
		  - accessedAt: time.Time

		Returns:
		  - error: apperr.NotFound if the enrollment is gone, or persistence failures
	*/
	SetCourseProgress(context context.Context, userID, courseID string, progress int, accessedAt time.Time) error
}
