// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/catalog/course"
	"github.com/taibuivan/edustream/internal/learning"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/storage"
	"github.com/taibuivan/edustream/internal/platform/validate"
	"github.com/taibuivan/edustream/pkg/pointer"
	"github.com/taibuivan/edustream/pkg/uuid"
)

// # Collaborators

// CourseLookup resolves a video's parent course.
type CourseLookup interface {
	FindByID(ctx context.Context, id string) (*course.Course, error)
}

// ObjectStore is the signed-delivery adapter.
type ObjectStore interface {
	IssuePlaybackURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
	IssueUploadURL(ctx context.Context, courseID, fileName, mimeType string, ttl time.Duration) (*storage.UploadTicket, error)
	Upload(ctx context.Context, storageKey, contentType string, body io.Reader) error
	DeleteObject(ctx context.Context, storageKey string) error
}

// Ledger records learner progress and answers enrollment questions.
type Ledger interface {
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	TrackProgress(ctx context.Context, principal *access.Principal, videoID string, progress int) (*learning.ProgressUpdate, error)
}

// Options holds the signed URL lifetimes.
type Options struct {
	PlaybackTTL time.Duration
	UploadTTL   time.Duration
}

// # Service Layer

// Service orchestrates video metadata, storage and playback.
type Service struct {
	repository Repository
	courses    CourseLookup
	objects    ObjectStore
	ledger     Ledger
	options    Options
	logger     *slog.Logger
}

// NewService constructs a new video [Service].
func NewService(repository Repository, courses CourseLookup, objects ObjectStore, ledger Ledger, options Options, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		courses:    courses,
		objects:    objects,
		ledger:     ledger,
		options:    options,
		logger:     logger,
	}
}

// # Lookups

/*
ListByCourse returns a course's videos in order.

Description: Managers see drafts. Everyone else sees published videos of a
published course; an unpublished course is reported as not found.
*/
func (service *Service) ListByCourse(context context.Context, principal *access.Principal, courseID string) ([]*Video, error) {
	parent, err := service.courses.FindByID(context, courseID)
	if err != nil {
		return nil, err
	}

	manager := access.CanManageCourse(principal, parent)
	if !parent.IsPublished && !manager {
		return nil, apperr.NotFound("Course")
	}

	return service.repository.ListByCourse(context, courseID, !manager)
}

/*
Get returns a video's metadata and, when permitted, a signed playback URL.

Description: A playback URL is issued to course managers, and to enrolled
learners when the video is published. Each issued URL counts as one view.

Returns:
  - *Video: Metadata with optional PlaybackURL
  - error: apperr.NotFound when the caller may not see the video
*/
func (service *Service) Get(context context.Context, principal *access.Principal, videoID string) (*Video, error) {
	video, err := service.repository.FindByID(context, videoID)
	if err != nil {
		return nil, err
	}

	parent, err := service.courses.FindByID(context, video.CourseID)
	if err != nil {
		return nil, err
	}

	manager := access.CanManageVideo(principal, parent)
	if !manager && (!video.IsPublished || !parent.IsPublished) {
		return nil, apperr.NotFound("Video")
	}

	playable := manager
	if !playable && principal != nil {
		playable, err = service.ledger.IsEnrolled(context, principal.UserID, video.CourseID)
		if err != nil {
			return nil, err
		}
	}

	if !playable {
		return video, nil
	}

	url, err := service.objects.IssuePlaybackURL(context, video.StorageKey, service.options.PlaybackTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("video_service_sign_playback_failed: %w", err))
	}
	video.PlaybackURL = url

	if err := service.repository.IncrementViewCount(context, video.ID); err != nil {
		return nil, err
	}
	video.ViewCount++

	return video, nil
}

// # Management

// CreateInput carries a new video. Either File or StorageKey must be set.
type CreateInput struct {
	CourseID        string
	ModuleID        *string
	Title           string
	Description     string
	DurationSeconds int
	Position        int
	IsPublished     bool

	// StorageKey references an object uploaded through a signed upload URL.
	StorageKey string

	// File streams the bytes through the API.
	File     io.Reader
	FileName string
	MimeType string
}

/*
Create stores a new video under a managed course.

Description: A streamed file is uploaded before the row is written; if the
row cannot be written the object is released again.

Returns:
  - *Video: The persisted video
  - error: Forbidden, validation, NotFound or BadRequest (module of another course)
*/
func (service *Service) Create(context context.Context, principal *access.Principal, input CreateInput) (*Video, error) {
	parent, err := service.courses.FindByID(context, input.CourseID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(access.CanManageVideo(principal, parent), "You do not manage this course"); err != nil {
		return nil, err
	}

	video := &Video{
		ID:              uuid.New(),
		CourseID:        parent.ID,
		ModuleID:        input.ModuleID,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		StorageKey:      strings.TrimSpace(input.StorageKey),
		DurationSeconds: input.DurationSeconds,
		Position:        input.Position,
		IsPublished:     input.IsPublished,
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, video.Title).
		MaxLen(FieldTitle, video.Title, MaxTitleLength).
		Custom(FieldDuration, video.DurationSeconds < 0, "Duration cannot be negative")

	if input.File != nil {
		validator.Custom(FieldMimeType, !IsAllowedMimeType(input.MimeType), unsupportedTypeMessage())
	} else {
		validator.Required(FieldStorageKey, video.StorageKey).
			Custom(FieldStorageKey, video.StorageKey != "" && !storage.OwnsKey(parent.ID, video.StorageKey), "Unknown storage key")
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	uploaded := false
	if input.File != nil {
		video.StorageKey = storage.NewObjectKey(parent.ID, input.FileName)
		if err := service.objects.Upload(context, video.StorageKey, input.MimeType, input.File); err != nil {
			return nil, apperr.Internal(fmt.Errorf("video_service_upload_failed: %w", err))
		}
		uploaded = true
	}

	if err := service.repository.Create(context, video); err != nil {
		if uploaded {
			service.release(context, video.StorageKey)
		}
		if errors.Is(err, ErrModuleMismatch) {
			return nil, apperr.BadRequest("Module does not belong to this course")
		}
		if errors.Is(err, ErrStorageKeyInUse) {
			return nil, apperr.Conflict("Storage key is already in use")
		}
		return nil, err
	}

	service.logger.Info("video_created",
		slog.String("video_id", video.ID),
		slog.String("course_id", video.CourseID),
		slog.Int("position", video.Position),
	)

	return video, nil
}

// UpdateInput carries the optional video fields to change.
type UpdateInput struct {
	ModuleID        *string
	Title           *string
	Description     *string
	DurationSeconds *int
	Position        *int
	IsPublished     *bool
}

// Update changes a video's metadata.
func (service *Service) Update(context context.Context, principal *access.Principal, videoID string, input UpdateInput) (*Video, error) {
	video, err := service.loadManaged(context, principal, videoID)
	if err != nil {
		return nil, err
	}

	if input.ModuleID != nil {
		video.ModuleID = input.ModuleID
		if *input.ModuleID == "" {
			video.ModuleID = nil
		}
	}
	if input.Title != nil {
		video.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		video.Description = strings.TrimSpace(*input.Description)
	}
	video.DurationSeconds = pointer.Fallback(input.DurationSeconds, video.DurationSeconds)
	video.Position = pointer.Fallback(input.Position, video.Position)
	video.IsPublished = pointer.Fallback(input.IsPublished, video.IsPublished)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, video.Title).
		MaxLen(FieldTitle, video.Title, MaxTitleLength).
		Custom(FieldDuration, video.DurationSeconds < 0, "Duration cannot be negative")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repository.Update(context, video); err != nil {
		if errors.Is(err, ErrModuleMismatch) {
			return nil, apperr.BadRequest("Module does not belong to this course")
		}
		return nil, err
	}

	return video, nil
}

// Delete removes a video and releases its stored object.
func (service *Service) Delete(context context.Context, principal *access.Principal, videoID string) error {
	if _, err := service.loadManaged(context, principal, videoID); err != nil {
		return err
	}

	storageKey, err := service.repository.Delete(context, videoID)
	if err != nil {
		return err
	}

	service.release(context, storageKey)
	service.logger.Warn("video_deleted", slog.String("video_id", videoID))

	return nil
}

/*
IssueUploadURL signs a direct-to-storage upload for a managed course.

Returns:
  - *storage.UploadTicket: Signed PUT URL and the storage key to submit on create
  - error: Forbidden, ValidationError (unsupported MIME type)
*/
func (service *Service) IssueUploadURL(context context.Context, principal *access.Principal, courseID, fileName, mimeType string) (*storage.UploadTicket, error) {
	parent, err := service.courses.FindByID(context, courseID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(access.CanManageVideo(principal, parent), "You do not manage this course"); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldFile, fileName).
		Custom(FieldMimeType, !IsAllowedMimeType(mimeType), unsupportedTypeMessage())
	if err := validator.Err(); err != nil {
		return nil, err
	}

	ticket, err := service.objects.IssueUploadURL(context, parent.ID, fileName, mimeType, service.options.UploadTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("video_service_sign_upload_failed: %w", err))
	}

	return ticket, nil
}

// TrackProgress records the learner's progress through the ledger.
func (service *Service) TrackProgress(context context.Context, principal *access.Principal, videoID string, progress int) (*learning.ProgressUpdate, error) {
	return service.ledger.TrackProgress(context, principal, videoID, progress)
}

// # Helpers

func (service *Service) loadManaged(context context.Context, principal *access.Principal, videoID string) (*Video, error) {
	video, err := service.repository.FindByID(context, videoID)
	if err != nil {
		return nil, err
	}

	parent, err := service.courses.FindByID(context, video.CourseID)
	if err != nil {
		return nil, err
	}

	if err := access.Require(access.CanManageVideo(principal, parent), "You do not manage this course"); err != nil {
		return nil, err
	}

	return video, nil
}

func (service *Service) release(context context.Context, storageKey string) {
	if err := service.objects.DeleteObject(context, storageKey); err != nil {
		service.logger.Error("storage_release_failed",
			slog.String("storage_key", storageKey),
			slog.Any("error", err),
		)
	}
}

func unsupportedTypeMessage() string {
	return "Must be one of: " + strings.Join(AllowedMimeTypes, ", ")
}
