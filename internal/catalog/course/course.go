// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package course defines the course catalogue: courses, their modules and
learner reviews.

Core Responsibility:

  - Catalogue: Courses are owned by one instructor and addressed by ID or slug.
  - Structure: Modules group videos inside a course.
  - Feedback: One review per learner, aggregated into an average rating.

Consistency rules (slug derivation, rating recomputation and deletion guards)
live in the service and repository of this package.
*/
package course

import (
	"errors"
	"math"
	"time"

	"github.com/taibuivan/edustream/pkg/slice"
)

// # Domain Enums

// Level classifies the difficulty of a course.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// IsValid reports whether l is a recognised [Level].
func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Levels lists every level, easiest first.
func Levels() []string {
	return []string{string(LevelBeginner), string(LevelIntermediate), string(LevelAdvanced)}
}

// # Domain Entities

// Course is a published or draft unit of instruction.
type Course struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	InstructorID    string    `json:"instructorId"`
	Level           Level     `json:"level"`
	IsPublished     bool      `json:"isPublished"`
	EnrollmentCount int       `json:"enrollmentCount"`
	RatingAvg       *float64  `json:"ratingAvg"`
	Modules         []Module  `json:"modules"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OwnerID implements [access.Owned].
func (c *Course) OwnerID() string {
	return c.InstructorID
}

// Module is an ordered section of a course.
type Module struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// Review is a learner's rating of a course. There is at most one per (course, user).
type Review struct {
	CourseID  string    `json:"courseId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// # Query Types

// Filter holds the parameters for a filtered course list query.
type Filter struct {
	Levels       []Level
	Query        string
	InstructorID string

	// IncludeAll lifts the published-only restriction (admins).
	IncludeAll bool

	// OwnerID additionally exposes this instructor's drafts.
	OwnerID string
}

// # Limits & Field Names

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxCommentLength     = 2000
	MinRating            = 1
	MaxRating            = 5
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldLevel       = "level"
	FieldRating      = "rating"
	FieldComment     = "comment"
	FieldPosition    = "position"
)

// # Sentinels

var (
	// ErrModuleInUse is returned when a video still references the module.
	ErrModuleInUse = errors.New("module is referenced by videos")

	// ErrCourseHasEnrollments is returned when a learner is enrolled in the course.
	ErrCourseHasEnrollments = errors.New("course has enrollments")
)

// # Rating

// AverageRating is the mean of ratings rounded to one decimal, or nil when empty.
func AverageRating(ratings []int) *float64 {
	if len(ratings) == 0 {
		return nil
	}

	sum := slice.Reduce(ratings, 0, func(total, rating int) int { return total + rating })
	average := math.Round(float64(sum)/float64(len(ratings))*10) / 10

	return &average
}
