// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package learning_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/learning"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/sec"
)

// # Fakes

type enrollmentKey struct{ userID, courseID string }
type viewKey struct{ videoID, userID string }

// memoryLedger mirrors the Postgres repository semantics in memory.
type memoryLedger struct {
	mu          sync.Mutex
	published   map[string]bool   // courseID -> published
	videos      map[string]string // videoID -> courseID
	counters    map[string]int    // courseID -> enrollment count
	enrollments map[enrollmentKey]*learning.Enrollment
	views       map[viewKey]*learning.ViewEntry
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		published:   map[string]bool{},
		videos:      map[string]string{},
		counters:    map[string]int{},
		enrollments: map[enrollmentKey]*learning.Enrollment{},
		views:       map[viewKey]*learning.ViewEntry{},
	}
}

func (ledger *memoryLedger) Enroll(_ context.Context, enrollment *learning.Enrollment) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	published, ok := ledger.published[enrollment.CourseID]
	if !ok || !published {
		return learning.ErrCourseUnavailable
	}
	key := enrollmentKey{enrollment.UserID, enrollment.CourseID}
	if _, exists := ledger.enrollments[key]; exists {
		return learning.ErrAlreadyEnrolled
	}
	copied := *enrollment
	ledger.enrollments[key] = &copied
	ledger.counters[enrollment.CourseID]++
	return nil
}

func (ledger *memoryLedger) IsEnrolled(_ context.Context, userID, courseID string) (bool, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	_, ok := ledger.enrollments[enrollmentKey{userID, courseID}]
	return ok, nil
}

func (ledger *memoryLedger) ListEnrolled(_ context.Context, userID string) ([]learning.EnrolledCourse, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	result := []learning.EnrolledCourse{}
	for key, enrollment := range ledger.enrollments {
		if key.userID == userID {
			result = append(result, learning.EnrolledCourse{
				Course:   learning.CourseSummary{ID: key.courseID},
				Progress: enrollment.Progress,
			})
		}
	}
	return result, nil
}

func (ledger *memoryLedger) FindVideoCourse(_ context.Context, videoID string) (string, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	courseID, ok := ledger.videos[videoID]
	if !ok {
		return "", apperr.NotFound("Video")
	}
	return courseID, nil
}

func (ledger *memoryLedger) UpsertView(_ context.Context, entry *learning.ViewEntry) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	copied := *entry
	ledger.views[viewKey{entry.VideoID, entry.UserID}] = &copied
	return nil
}

func (ledger *memoryLedger) CountCompletion(_ context.Context, userID, courseID string) (int, int, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	total, completed := 0, 0
	for videoID, parent := range ledger.videos {
		if parent != courseID {
			continue
		}
		total++
		if view, ok := ledger.views[viewKey{videoID, userID}]; ok && view.Completed {
			completed++
		}
	}
	return total, completed, nil
}

func (ledger *memoryLedger) SetCourseProgress(_ context.Context, userID, courseID string, progress int, accessedAt time.Time) error {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	enrollment, ok := ledger.enrollments[enrollmentKey{userID, courseID}]
	if !ok {
		return apperr.NotFound("Enrollment")
	}
	enrollment.Progress = progress
	enrollment.LastAccessedAt = accessedAt
	return nil
}

type countingCache struct {
	invalidated []string
}

func (cache *countingCache) Invalidate(_ context.Context, courseID string) {
	cache.invalidated = append(cache.invalidated, courseID)
}

func codeOf(err error) string {
	if appError := apperr.As(err); appError != nil {
		return appError.Code
	}
	return ""
}

var student = &access.Principal{UserID: "student-1", Role: sec.RoleUser}

// # Enrollment

/*
TestService_Enroll rejects double enrollment and keeps the counter in step.
*/
func TestService_Enroll(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.published["course-1"] = true
	ledger.published["draft"] = false
	cache := &countingCache{}
	service := learning.NewService(ledger, cache)
	ctx := context.Background()

	enrollment, err := service.Enroll(ctx, student, "course-1")
	require.NoError(t, err)
	assert.Equal(t, 0, enrollment.Progress)
	assert.Equal(t, 1, ledger.counters["course-1"])
	assert.Equal(t, []string{"course-1"}, cache.invalidated)

	_, err = service.Enroll(ctx, student, "course-1")
	assert.Equal(t, apperr.CodeBadRequest, codeOf(err))
	assert.Equal(t, 1, ledger.counters["course-1"])

	_, err = service.Enroll(ctx, student, "draft")
	assert.Equal(t, apperr.CodeNotFound, codeOf(err))

	_, err = service.Enroll(ctx, student, "missing")
	assert.Equal(t, apperr.CodeNotFound, codeOf(err))
}

// # Progress

func seedCourse(ledger *memoryLedger, courseID string, videoIDs ...string) {
	ledger.published[courseID] = true
	for _, videoID := range videoIDs {
		ledger.videos[videoID] = courseID
	}
}

/*
TestService_TrackProgress_CompletionThreshold counts a video as completed at 90, not 89.
*/
func TestService_TrackProgress_CompletionThreshold(t *testing.T) {
	ledger := newMemoryLedger()
	seedCourse(ledger, "c", "v1", "v2")
	service := learning.NewService(ledger, &countingCache{})
	ctx := context.Background()

	_, err := service.Enroll(ctx, student, "c")
	require.NoError(t, err)

	update, err := service.TrackProgress(ctx, student, "v1", 89)
	require.NoError(t, err)
	assert.False(t, update.Completed)
	assert.Equal(t, 0, update.CourseProgress)

	update, err = service.TrackProgress(ctx, student, "v1", 90)
	require.NoError(t, err)
	assert.True(t, update.Completed)
	assert.Equal(t, 50, update.CourseProgress)
	assert.Equal(t, 50, ledger.enrollments[enrollmentKey{"student-1", "c"}].Progress)

	// Dropping back below the threshold un-completes the video
	update, err = service.TrackProgress(ctx, student, "v1", 10)
	require.NoError(t, err)
	assert.False(t, update.Completed)
	assert.Equal(t, 0, update.CourseProgress)
}

/*
TestService_TrackProgress_Idempotent yields the same state for a repeated submission.
*/
func TestService_TrackProgress_Idempotent(t *testing.T) {
	ledger := newMemoryLedger()
	seedCourse(ledger, "c", "v1", "v2", "v3")
	service := learning.NewService(ledger, &countingCache{})
	ctx := context.Background()

	_, err := service.Enroll(ctx, student, "c")
	require.NoError(t, err)

	first, err := service.TrackProgress(ctx, student, "v1", 100)
	require.NoError(t, err)
	second, err := service.TrackProgress(ctx, student, "v1", 100)
	require.NoError(t, err)

	assert.Equal(t, first.CourseProgress, second.CourseProgress)
	assert.Equal(t, 33, second.CourseProgress)
	assert.Len(t, ledger.views, 1)
}

/*
TestService_TrackProgress_Guards covers range, missing video and missing enrollment.
*/
func TestService_TrackProgress_Guards(t *testing.T) {
	ledger := newMemoryLedger()
	seedCourse(ledger, "c", "v1")
	service := learning.NewService(ledger, &countingCache{})
	ctx := context.Background()

	_, err := service.TrackProgress(ctx, student, "v1", 101)
	assert.Equal(t, apperr.CodeBadRequest, codeOf(err))

	_, err = service.TrackProgress(ctx, student, "v1", -1)
	assert.Equal(t, apperr.CodeBadRequest, codeOf(err))

	_, err = service.TrackProgress(ctx, student, "nope", 50)
	assert.Equal(t, apperr.CodeNotFound, codeOf(err))

	_, err = service.TrackProgress(ctx, student, "v1", 50)
	assert.Equal(t, apperr.CodeForbidden, codeOf(err))
	assert.Empty(t, ledger.views)
}

/*
TestService_TrackCourseProgress writes the view for a matching course and
nothing for a video of another course.
*/
func TestService_TrackCourseProgress(t *testing.T) {
	ledger := newMemoryLedger()
	seedCourse(ledger, "c1", "v1")
	seedCourse(ledger, "c2", "v2")
	service := learning.NewService(ledger, &countingCache{})
	ctx := context.Background()

	_, err := service.Enroll(ctx, student, "c1")
	require.NoError(t, err)

	_, err = service.TrackCourseProgress(ctx, student, "c1", "v2", 95)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeBadRequest, appError.Code)
	assert.Equal(t, "Video does not belong to this course", appError.Message)
	assert.Empty(t, ledger.views)

	update, err := service.TrackCourseProgress(ctx, student, "c1", "v1", 95)
	require.NoError(t, err)
	assert.Equal(t, "c1", update.CourseID)
	assert.True(t, update.Completed)
	assert.Equal(t, 100, update.CourseProgress)

	view := ledger.views[viewKey{"v1", student.UserID}]
	require.NotNil(t, view)
	assert.Equal(t, 95, view.Progress)
}

/*
TestService_CourseProgress_NoVideos reports a course without videos as not found.
*/
func TestService_CourseProgress_NoVideos(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.published["empty"] = true
	service := learning.NewService(ledger, &countingCache{})
	ctx := context.Background()

	_, err := service.Enroll(ctx, student, "empty")
	require.NoError(t, err)

	_, err = service.CourseProgress(ctx, student, "empty")
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, apperr.CodeNotFound, appError.Code)
	assert.Equal(t, "Course has no videos", appError.Message)

	_, err = service.CourseProgress(ctx, &access.Principal{UserID: "other", Role: sec.RoleUser}, "empty")
	assert.Equal(t, apperr.CodeForbidden, codeOf(err))
}

/*
TestCoursePercent_RoundsHalfUp checks the integer rounding rule.
*/
func TestCoursePercent_RoundsHalfUp(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{1, 200, 1},
		{5, 5, 100},
		{0, 0, 0},
	}

	for _, testCase := range tests {
		assert.Equal(t, testCase.want, learning.CoursePercent(testCase.completed, testCase.total),
			"%d/%d", testCase.completed, testCase.total)
	}

	assert.True(t, learning.IsCompleted(90))
	assert.False(t, learning.IsCompleted(89))
}
