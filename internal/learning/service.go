// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/ctxutil"
)

// CourseInvalidator drops cached course details after the enrollment counter moves.
type CourseInvalidator interface {
	Invalidate(ctx context.Context, courseID string)
}

// Service implements the enrollment and progress use cases.
type Service struct {
	repository Repository
	cache      CourseInvalidator
	now        func() time.Time
}

// NewService constructs a new ledger [Service].
func NewService(repository Repository, cache CourseInvalidator) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		now:        time.Now,
	}
}

// # Enrollment

/*
Enroll adds the principal to a published course.

Returns:
  - *Enrollment: The new enrollment with progress 0
  - err: NotFound (missing or unpublished course), BadRequest (already enrolled)
*/
func (service *Service) Enroll(context context.Context, principal *access.Principal, courseID string) (*Enrollment, error) {
	now := service.now()
	enrollment := &Enrollment{
		UserID:         principal.UserID,
		CourseID:       courseID,
		EnrolledAt:     now,
		LastAccessedAt: now,
	}

	if err := service.repository.Enroll(context, enrollment); err != nil {
		switch {
		case errors.Is(err, ErrCourseUnavailable):
			return nil, apperr.NotFound("Course")
		case errors.Is(err, ErrAlreadyEnrolled):
			return nil, apperr.BadRequest("Already enrolled in this course")
		default:
			return nil, err
		}
	}

	service.cache.Invalidate(context, courseID)
	ctxutil.GetLogger(context).InfoContext(context, "course_enrolled", slog.String("course_id", courseID))

	return enrollment, nil
}

// EnrolledCourses lists the principal's enrollments.
func (service *Service) EnrolledCourses(context context.Context, principal *access.Principal) ([]EnrolledCourse, error) {
	return service.repository.ListEnrolled(context, principal.UserID)
}

// IsEnrolled implements [access.EnrollmentLookup].
func (service *Service) IsEnrolled(context context.Context, userID, courseID string) (bool, error) {
	return service.repository.IsEnrolled(context, userID, courseID)
}

// # Progress

/*
TrackProgress records the principal's progress on a video and recomputes the
course progress.

Returns:
  - *ProgressUpdate: Stored video progress plus the recomputed course percentage
  - err: BadRequest (out of range), NotFound (video), Forbidden (not enrolled)
*/
func (service *Service) TrackProgress(context context.Context, principal *access.Principal, videoID string, progress int) (*ProgressUpdate, error) {
	return service.track(context, principal, "", videoID, progress)
}

/*
TrackCourseProgress is [Service.TrackProgress] scoped to a course named by the
caller. Nothing is written when the video belongs to another course.

Returns:
  - *ProgressUpdate: Stored video progress plus the recomputed course percentage
  - err: BadRequest (out of range or course mismatch), NotFound (video), Forbidden (not enrolled)
*/
func (service *Service) TrackCourseProgress(context context.Context, principal *access.Principal, courseID, videoID string, progress int) (*ProgressUpdate, error) {
	if courseID == "" {
		return nil, apperr.BadRequest("Course is required")
	}
	return service.track(context, principal, courseID, videoID, progress)
}

// track stores one view entry. An empty expectedCourseID skips the course check.
func (service *Service) track(context context.Context, principal *access.Principal, expectedCourseID, videoID string, progress int) (*ProgressUpdate, error) {
	if progress < 0 || progress > MaxProgress {
		return nil, apperr.BadRequest(fmt.Sprintf("Progress must be between 0 and %d", MaxProgress))
	}

	courseID, err := service.repository.FindVideoCourse(context, videoID)
	if err != nil {
		return nil, err
	}

	if expectedCourseID != "" && courseID != expectedCourseID {
		return nil, apperr.BadRequest("Video does not belong to this course")
	}

	if err := service.requireEnrollment(context, principal.UserID, courseID); err != nil {
		return nil, err
	}

	entry := &ViewEntry{
		VideoID:      videoID,
		UserID:       principal.UserID,
		Progress:     progress,
		Completed:    IsCompleted(progress),
		LastViewedAt: service.now(),
	}
	if err := service.repository.UpsertView(context, entry); err != nil {
		return nil, err
	}

	coursePercent, err := service.RecomputeCourseProgress(context, principal.UserID, courseID)
	if err != nil {
		return nil, err
	}

	return &ProgressUpdate{
		VideoID:        videoID,
		CourseID:       courseID,
		Progress:       entry.Progress,
		Completed:      entry.Completed,
		CourseProgress: coursePercent,
	}, nil
}

/*
CourseProgress recomputes and returns the principal's progress in a course.

Returns:
  - int: Percentage 0..100
  - err: Forbidden (not enrolled), NotFound (course has no videos)
*/
func (service *Service) CourseProgress(context context.Context, principal *access.Principal, courseID string) (int, error) {
	if err := service.requireEnrollment(context, principal.UserID, courseID); err != nil {
		return 0, err
	}
	return service.RecomputeCourseProgress(context, principal.UserID, courseID)
}

/*
RecomputeCourseProgress recounts completed videos over all videos of the course.

Description: Never incremental, so repeating the same update yields the same
stored value.
*/
func (service *Service) RecomputeCourseProgress(context context.Context, userID, courseID string) (int, error) {
	total, completed, err := service.repository.CountCompletion(context, userID, courseID)
	if err != nil {
		return 0, err
	}

	if total == 0 {
		notFound := apperr.NotFound("Course videos")
		notFound.Message = "Course has no videos"
		return 0, notFound
	}

	percent := CoursePercent(completed, total)
	if err := service.repository.SetCourseProgress(context, userID, courseID, percent, service.now()); err != nil {
		return 0, err
	}

	return percent, nil
}

func (service *Service) requireEnrollment(context context.Context, userID, courseID string) error {
	enrolled, err := service.repository.IsEnrolled(context, userID, courseID)
	if err != nil {
		return err
	}
	return access.Require(enrolled, "You are not enrolled in this course")
}
