// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/validate"
	"github.com/taibuivan/edustream/pkg/pagination"
	"github.com/taibuivan/edustream/pkg/pointer"
	"github.com/taibuivan/edustream/pkg/slug"
	"github.com/taibuivan/edustream/pkg/uuid"
)

// # Collaborators

// Cache holds hydrated course details between requests.
type Cache interface {
	Get(ctx context.Context, courseID string) (*Course, bool)
	Set(ctx context.Context, course *Course)
	Invalidate(ctx context.Context, courseID string)
}

// ObjectDeleter releases stored video objects.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// ReviewPolicy decides whether a principal may review a course.
type ReviewPolicy interface {
	CanReview(ctx context.Context, principal *access.Principal, courseID string) (bool, error)
}

// # Service Layer

// Service orchestrates the business logic for the course catalogue.
type Service struct {
	repository Repository
	cache      Cache
	objects    ObjectDeleter
	policy     ReviewPolicy
	logger     *slog.Logger
}

// NewService constructs a new catalogue [Service].
func NewService(repository Repository, cache Cache, objects ObjectDeleter, policy ReviewPolicy, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		objects:    objects,
		policy:     policy,
		logger:     logger,
	}
}

// # Course Lookups

/*
List retrieves a paginated, filtered collection of courses.

Description: Admins see every course. Instructors additionally see their own
drafts. Everyone else sees published courses only.
*/
func (service *Service) List(context context.Context, principal *access.Principal, filter Filter, params pagination.Params) ([]*Course, int, error) {
	filter.IncludeAll = access.IsAdmin(principal)
	filter.OwnerID = ""
	if principal != nil && access.CanAuthor(principal) {
		filter.OwnerID = principal.UserID
	}

	return service.repository.List(context, filter, params)
}

/*
Get fetches a course by UUID or slug.

Description: If the identifier is a UUID, the cache is consulted before a
primary key lookup; otherwise the slug is resolved in storage. Unpublished
courses are reported as not found to anyone who cannot manage them.

Returns:
  - *Course: The hydrated course with modules
  - error: apperr.NotFound
*/
func (service *Service) Get(context context.Context, principal *access.Principal, identifier string) (*Course, error) {
	course, err := service.load(context, identifier)
	if err != nil {
		return nil, err
	}

	if !course.IsPublished && !access.CanViewUnpublished(principal, course) {
		return nil, apperr.NotFound("Course")
	}

	return course, nil
}

// load resolves an identifier through the cache when it is an ID.
func (service *Service) load(context context.Context, identifier string) (*Course, error) {
	if !uuid.IsValid(identifier) {
		return service.repository.FindBySlug(context, identifier)
	}

	if cached, ok := service.cache.Get(context, identifier); ok {
		return cached, nil
	}

	course, err := service.repository.FindByID(context, identifier)
	if err != nil {
		return nil, err
	}

	service.cache.Set(context, course)
	return course, nil
}

// loadManaged loads a course from storage and requires the principal to manage it.
func (service *Service) loadManaged(context context.Context, principal *access.Principal, courseID string) (*Course, error) {
	course, err := service.repository.FindByID(context, courseID)
	if err != nil {
		return nil, err
	}

	if err := access.Require(access.CanManageCourse(principal, course), "You do not manage this course"); err != nil {
		return nil, err
	}

	return course, nil
}

// # Course Management

// CreateInput holds the attributes of a new course.
type CreateInput struct {
	Title       string
	Description string
	Level       Level
	IsPublished bool
}

/*
Create initialises a new course owned by the principal.

Description: Requires the instructor or admin role. The slug is derived from
the title; a collision with an existing slug is reported as Conflict.

Returns:
  - *Course: The persisted course
  - error: Forbidden, validation or Conflict errors
*/
func (service *Service) Create(context context.Context, principal *access.Principal, input CreateInput) (*Course, error) {
	if err := access.Require(access.CanAuthor(principal), "Only instructors can create courses"); err != nil {
		return nil, err
	}

	course := &Course{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		InstructorID: principal.UserID,
		Level:        input.Level,
		IsPublished:  input.IsPublished,
		Modules:      []Module{},
	}
	if course.Level == "" {
		course.Level = LevelBeginner
	}
	course.Slug = slug.From(course.Title)

	if err := validateCourse(course); err != nil {
		return nil, err
	}

	if err := service.repository.Create(context, course); err != nil {
		return nil, err
	}

	service.logger.Info("course_created",
		slog.String("course_id", course.ID),
		slog.String("slug", course.Slug),
		slog.String("instructor_id", course.InstructorID),
	)

	return course, nil
}

// UpdateInput carries the optional course fields to change.
type UpdateInput struct {
	Title       *string
	Description *string
	Level       *Level
	IsPublished *bool
}

// Update applies a partial change; a new title recomputes the slug.
func (service *Service) Update(context context.Context, principal *access.Principal, courseID string, input UpdateInput) (*Course, error) {
	course, err := service.loadManaged(context, principal, courseID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		course.Title = strings.TrimSpace(*input.Title)
		course.Slug = slug.From(course.Title)
	}
	if input.Description != nil {
		course.Description = strings.TrimSpace(*input.Description)
	}
	course.Level = pointer.Fallback(input.Level, course.Level)
	course.IsPublished = pointer.Fallback(input.IsPublished, course.IsPublished)

	if err := validateCourse(course); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, course); err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, course.ID)
	service.logger.Info("course_updated", slog.String("course_id", course.ID))

	return course, nil
}

/*
Delete removes a course, its modules, reviews and videos.

Description: Fails with BadRequest while any learner is enrolled. After the
transaction commits, each video's storage object is released. A failed release
is logged and does not resurrect the course.
*/
func (service *Service) Delete(context context.Context, principal *access.Principal, courseID string) error {
	if _, err := service.loadManaged(context, principal, courseID); err != nil {
		return err
	}

	storageKeys, err := service.repository.Delete(context, courseID)
	if err != nil {
		if errors.Is(err, ErrCourseHasEnrollments) {
			return apperr.BadRequest("Cannot delete a course with enrolled students")
		}
		return err
	}

	service.cache.Invalidate(context, courseID)
	service.releaseObjects(context, storageKeys)

	service.logger.Warn("course_deleted",
		slog.String("course_id", courseID),
		slog.Int("videos_removed", len(storageKeys)),
		slog.String("by", principal.UserID),
	)

	return nil
}

func (service *Service) releaseObjects(context context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := service.objects.DeleteObject(context, key); err != nil {
			service.logger.Error("storage_release_failed",
				slog.String("storage_key", key),
				slog.Any("error", err),
			)
		}
	}
}

// # Modules

// ModuleInput holds module attributes. A zero Position appends the module.
type ModuleInput struct {
	Title       string
	Description string
	Position    int
}

// AddModule appends a module to a managed course.
func (service *Service) AddModule(context context.Context, principal *access.Principal, courseID string, input ModuleInput) (*Module, error) {
	if _, err := service.loadManaged(context, principal, courseID); err != nil {
		return nil, err
	}

	module := &Module{
		ID:          uuid.New(),
		CourseID:    courseID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Position:    input.Position,
	}
	if err := validateModule(module); err != nil {
		return nil, err
	}

	if err := service.repository.CreateModule(context, module); err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, courseID)
	return module, nil
}

// UpdateModule replaces a module's attributes.
func (service *Service) UpdateModule(context context.Context, principal *access.Principal, courseID, moduleID string, input ModuleInput) (*Module, error) {
	if _, err := service.loadManaged(context, principal, courseID); err != nil {
		return nil, err
	}

	module, err := service.repository.FindModule(context, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	module.Title = strings.TrimSpace(input.Title)
	module.Description = strings.TrimSpace(input.Description)
	if input.Position > 0 {
		module.Position = input.Position
	}
	if err := validateModule(module); err != nil {
		return nil, err
	}

	if err := service.repository.UpdateModule(context, module); err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, courseID)
	return module, nil
}

// DeleteModule removes a module no video references.
func (service *Service) DeleteModule(context context.Context, principal *access.Principal, courseID, moduleID string) error {
	if _, err := service.loadManaged(context, principal, courseID); err != nil {
		return err
	}

	if err := service.repository.DeleteModule(context, courseID, moduleID); err != nil {
		if errors.Is(err, ErrModuleInUse) {
			return apperr.BadRequest("Cannot delete a module that still has videos")
		}
		return err
	}

	service.cache.Invalidate(context, courseID)
	return nil
}

// # Reviews

/*
UpsertReview records the principal's review of a course.

Description: Only enrolled learners may review. A second submission from the
same learner overwrites rating and comment in place. The course average is
recomputed in the same transaction.

Returns:
  - *Review: The stored review
  - *float64: The new course average
  - error: Forbidden, validation or NotFound errors
*/
func (service *Service) UpsertReview(context context.Context, principal *access.Principal, courseID string, rating int, comment string) (*Review, *float64, error) {
	allowed, err := service.policy.CanReview(context, principal, courseID)
	if err != nil {
		return nil, nil, err
	}
	if err := access.Require(allowed, "Only enrolled students can review this course"); err != nil {
		return nil, nil, err
	}

	review := &Review{
		CourseID: courseID,
		UserID:   principal.UserID,
		Rating:   rating,
		Comment:  strings.TrimSpace(comment),
	}

	validator := &validate.Validator{}
	validator.Range(FieldRating, review.Rating, MinRating, MaxRating).
		MaxLen(FieldComment, review.Comment, MaxCommentLength)
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	average, err := service.repository.UpsertReview(context, review)
	if err != nil {
		return nil, nil, err
	}

	service.cache.Invalidate(context, courseID)
	service.logger.Info("course_reviewed",
		slog.String("course_id", courseID),
		slog.Int("rating", rating),
	)

	return review, average, nil
}

// ListReviews returns a page of reviews for a course.
func (service *Service) ListReviews(context context.Context, courseID string, params pagination.Params) ([]*Review, int, error) {
	return service.repository.ListReviews(context, courseID, params)
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (service *Service) DeleteReview(context context.Context, principal *access.Principal, courseID, userID string) (*float64, error) {
	allowed := principal != nil && (access.IsAdmin(principal) || principal.UserID == userID)
	if err := access.Require(allowed, "You cannot delete this review"); err != nil {
		return nil, err
	}

	average, err := service.repository.DeleteReview(context, courseID, userID)
	if err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, courseID)
	return average, nil
}

// # Validation

func validateCourse(course *Course) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, course.Title).
		MaxLen(FieldTitle, course.Title, MaxTitleLength).
		MaxLen(FieldDescription, course.Description, MaxDescriptionLength).
		OneOf(FieldLevel, string(course.Level), Levels()...).
		Custom(FieldTitle, course.Title != "" && course.Slug == "", "Title must contain letters or digits")
	return validator.Err()
}

func validateModule(module *Module) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, module.Title).
		MaxLen(FieldTitle, module.Title, MaxTitleLength).
		Custom(FieldPosition, module.Position < 0, "Position cannot be negative")
	return validator.Err()
}
