// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import "context"

// Repository defines the persistence contract for videos.
type Repository interface {
	// ListByCourse returns a course's videos ordered by position.
	ListByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]*Video, error)

	// FindByID loads one video.
	FindByID(ctx context.Context, id string) (*Video, error)

	/*
		Create persists a video.

		Description: Runs in one transaction holding the course row (and the
		module row, when set) FOR SHARE. A zero Position becomes
		max(sibling position) + 1, or 1 for the first video.

		Returns:
		  - error: ErrModuleMismatch, ErrStorageKeyInUse, apperr.NotFound (course) or storage failures
	*/
	Create(ctx context.Context, video *Video) error

	// Update persists the mutable metadata.
	Update(ctx context.Context, video *Video) error

	/*
		Delete removes a video and its view history.

		Returns:
		  - string: The released storage key
		  - error: apperr.NotFound or storage failures
	*/
	Delete(ctx context.Context, id string) (string, error)

	// IncrementViewCount bumps the view counter by one.
	IncrementViewCount(ctx context.Context, id string) error
}
