// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package learning implements the enrollment and progress ledger.

It records which users are enrolled in which courses, keeps one view-history
entry per user per video, and derives each enrollment's course progress from
the full set of the course's videos.

# Invariants

  - A (user, course) pair is enrolled at most once.
  - Video progress is within [0, 100]; a video counts as completed at 90.
  - Course progress is always recounted, never incremented.
*/
package learning

import (
	"errors"
	"time"
)

// # Ledger Constants

const (
	// CompletionThreshold is the video progress at which a view counts as completed.
	CompletionThreshold = 90

	// MaxProgress is the upper bound of any progress percentage.
	MaxProgress = 100
)

// # Domain Entities

// Enrollment is a user's membership in a course.
type Enrollment struct {
	UserID         string    `json:"userId"`
	CourseID       string    `json:"courseId"`
	Progress       int       `json:"progress"`
	EnrolledAt     time.Time `json:"enrolledAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// CourseSummary is the slice of a course shown next to an enrollment.
type CourseSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Level        string `json:"level"`
	InstructorID string `json:"instructorId"`
	IsPublished  bool   `json:"isPublished"`
}

// EnrolledCourse pairs an enrollment with its course.
type EnrolledCourse struct {
	Course         CourseSummary `json:"course"`
	Progress       int           `json:"progress"`
	EnrolledAt     time.Time     `json:"enrolledAt"`
	LastAccessedAt time.Time     `json:"lastAccessedAt"`
}

// ViewEntry is a user's single view-history entry on a video.
type ViewEntry struct {
	VideoID      string    `json:"videoId"`
	UserID       string    `json:"userId"`
	Progress     int       `json:"progress"`
	Completed    bool      `json:"completed"`
	LastViewedAt time.Time `json:"lastViewedAt"`
}

// ProgressUpdate is the result of recording video progress.
type ProgressUpdate struct {
	VideoID        string `json:"videoId"`
	CourseID       string `json:"courseId"`
	Progress       int    `json:"progress"`
	Completed      bool   `json:"completed"`
	CourseProgress int    `json:"courseProgress"`
}

// # Sentinel Errors

var (
	// ErrAlreadyEnrolled is returned when the (user, course) pair already exists.
	ErrAlreadyEnrolled = errors.New("learning: already enrolled")

	// ErrCourseUnavailable is returned when the course is missing or unpublished.
	ErrCourseUnavailable = errors.New("learning: course unavailable")
)

// # Derivations

// IsCompleted reports whether a video progress value counts as completed.
func IsCompleted(progress int) bool {
	return progress >= CompletionThreshold
}

// CoursePercent rounds completed/total*100 half up using integer arithmetic.
func CoursePercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (completed*2*MaxProgress + total) / (2 * total)
}
