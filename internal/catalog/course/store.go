// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import (
	"context"

	"github.com/taibuivan/edustream/pkg/pagination"
)

// # Repository Contracts

// Repository defines the persistence contract for courses, modules and reviews.
type Repository interface {
	/*
		List returns one page of courses matching the filter, newest first.

		Returns:
		  - []*Course: Courses without their modules
		  - int: Total match count
		  - error: Storage failures
	*/
	List(ctx context.Context, filter Filter, params pagination.Params) ([]*Course, int, error)

	/*
		FindByID loads a course with its ordered modules.

		Returns:
		  - *Course: Hydrated course
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(ctx context.Context, id string) (*Course, error)

	// FindBySlug loads a course with its ordered modules by its unique slug.
	FindBySlug(ctx context.Context, slug string) (*Course, error)

	/*
		Create persists a new course.

		Returns:
		  - error: apperr.Conflict when the slug is taken
	*/
	Create(ctx context.Context, course *Course) error

	// Update persists title, slug, description, level and publication state.
	Update(ctx context.Context, course *Course) error

	/*
		Delete removes a course with all of its videos.

		Description: The course row is locked FOR UPDATE, so enrollment (which
		takes FOR SHARE) cannot slip in between the guard and the delete.

		Returns:
		  - []string: Storage keys of the deleted videos, for release
		  - error: ErrCourseHasEnrollments, apperr.NotFound or storage failures
	*/
	Delete(ctx context.Context, id string) ([]string, error)

	// # Modules

	// FindModule loads a module, scoped to its course.
	FindModule(ctx context.Context, courseID, moduleID string) (*Module, error)

	// CreateModule persists a module; a zero Position is placed after the last sibling.
	CreateModule(ctx context.Context, module *Module) error

	// UpdateModule persists title, description and position.
	UpdateModule(ctx context.Context, module *Module) error

	/*
		DeleteModule removes a module that no video references.

		Returns:
		  - error: ErrModuleInUse, apperr.NotFound or storage failures
	*/
	DeleteModule(ctx context.Context, courseID, moduleID string) error

	// # Reviews

	/*
		UpsertReview inserts or overwrites the user's review and recomputes the
		course average in the same transaction.

		Returns:
		  - *float64: The new average rating
		  - error: apperr.NotFound (course) or storage failures
	*/
	UpsertReview(ctx context.Context, review *Review) (*float64, error)

	// ListReviews returns one page of a course's reviews, newest first.
	ListReviews(ctx context.Context, courseID string, params pagination.Params) ([]*Review, int, error)

	// DeleteReview removes a review and recomputes the course average.
	DeleteReview(ctx context.Context, courseID, userID string) (*float64, error)
}
