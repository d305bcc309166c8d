// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/constants"
	"github.com/taibuivan/edustream/internal/platform/middleware"
	requestutil "github.com/taibuivan/edustream/internal/platform/request"
	"github.com/taibuivan/edustream/internal/platform/respond"
	"github.com/taibuivan/edustream/internal/platform/validate"
	"github.com/taibuivan/edustream/pkg/convert"
)

// Handler implements the HTTP layer for videos.
type Handler struct {
	service *Service
}

// NewHandler constructs a new video [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the video endpoints.
//
// # Timeouts
//
// Multipart creation streams the file through the API and gets the long
// upload deadline. Every other route uses the global request deadline.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(chimw.Timeout(constants.UploadRequestTimeout), middleware.RequireAuth).Post("/", handler.createVideo)

	router.Group(func(timed chi.Router) {
		timed.Use(chimw.Timeout(constants.GlobalRequestTimeout))

		// ## Public Discovery
		timed.Get("/course/{courseId}", handler.listByCourse)
		timed.Get("/{id}", handler.getVideo)

		// ## Authenticated
		timed.Group(func(member chi.Router) {
			member.Use(middleware.RequireAuth)

			member.Post("/upload-url", handler.issueUploadURL)
			member.Put("/{id}", handler.updateVideo)
			member.Delete("/{id}", handler.deleteVideo)
			member.Post("/{id}/progress", handler.trackProgress)
		})
	})

	return router
}

// # Request Payloads

type createVideoRequest struct {
	CourseID        string  `json:"courseId" validate:"required"`
	ModuleID        *string `json:"moduleId"`
	Title           string  `json:"title" validate:"required,max=200"`
	Description     string  `json:"description"`
	DurationSeconds int     `json:"durationSeconds" validate:"gte=0"`
	Position        int     `json:"position" validate:"gte=0"`
	IsPublished     bool    `json:"isPublished"`
	StorageKey      string  `json:"storageKey" validate:"required"`
}

type updateVideoRequest struct {
	ModuleID        *string `json:"moduleId"`
	Title           *string `json:"title" validate:"omitempty,max=200"`
	Description     *string `json:"description"`
	DurationSeconds *int    `json:"durationSeconds" validate:"omitempty,gte=0"`
	Position        *int    `json:"position" validate:"omitempty,gte=1"`
	IsPublished     *bool   `json:"isPublished"`
}

type uploadURLRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
}

type progressRequest struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

// # Lookup Endpoints

// GET /api/v1/videos/course/{courseId}.
func (handler *Handler) listByCourse(writer http.ResponseWriter, request *http.Request) {
	videos, err := handler.service.ListByCourse(request.Context(), requestutil.Principal(request), requestutil.Param(request, "courseId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, videos)
}

/*
GET /api/v1/videos/{id}.

Response:
  - 200: Video: With playbackUrl for managers and enrolled learners
  - 404: NOT_FOUND
*/
func (handler *Handler) getVideo(writer http.ResponseWriter, request *http.Request) {
	video, err := handler.service.Get(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, video)
}

// # Management Endpoints

/*
POST /api/v1/videos.

Description: Accepts either multipart/form-data with a "file" part, or JSON
referencing a storageKey obtained from /videos/upload-url.

Response:
  - 201: Video
  - 400: VALIDATION_ERROR: Unsupported MIME type or missing fields
  - 403: FORBIDDEN: Caller does not manage the course
  - 409: CONFLICT: Storage key already used by another video
*/
func (handler *Handler) createVideo(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput

	if strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data") {
		if err := request.ParseMultipartForm(constants.MultipartMemory); err != nil {
			respond.Error(writer, request, apperr.BadRequest("Invalid multipart form"))
			return
		}
		defer func() { _ = request.MultipartForm.RemoveAll() }()

		file, header, err := request.FormFile(FieldFile)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldFile, "A video file is required"))
			return
		}
		defer file.Close()

		input = CreateInput{
			CourseID:        request.FormValue(FieldCourseID),
			Title:           request.FormValue(FieldTitle),
			Description:     request.FormValue("description"),
			DurationSeconds: convert.ToIntD(request.FormValue(FieldDuration), 0),
			Position:        convert.ToIntD(request.FormValue("position"), 0),
			IsPublished:     convert.ToBool(request.FormValue("isPublished")),
			File:            file,
			FileName:        header.Filename,
			MimeType:        header.Header.Get("Content-Type"),
		}
		if moduleID := request.FormValue(FieldModuleID); moduleID != "" {
			input.ModuleID = &moduleID
		}
	} else {
		var payload createVideoRequest
		if err := requestutil.DecodeAndValidate(request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}

		input = CreateInput{
			CourseID:        payload.CourseID,
			ModuleID:        payload.ModuleID,
			Title:           payload.Title,
			Description:     payload.Description,
			DurationSeconds: payload.DurationSeconds,
			Position:        payload.Position,
			IsPublished:     payload.IsPublished,
			StorageKey:      payload.StorageKey,
		}
	}

	if input.CourseID == "" {
		respond.Error(writer, request, validate.RequiredError(FieldCourseID, "This field is required"))
		return
	}

	video, err := handler.service.Create(request.Context(), requestutil.Principal(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, video)
}

// PUT /api/v1/videos/{id}.
func (handler *Handler) updateVideo(writer http.ResponseWriter, request *http.Request) {
	var input updateVideoRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	video, err := handler.service.Update(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id"), UpdateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, video)
}

// DELETE /api/v1/videos/{id}.
func (handler *Handler) deleteVideo(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/videos/upload-url.

Response:
  - 200: UploadTicket: {url, storageKey}
  - 400: VALIDATION_ERROR: Unsupported MIME type
*/
func (handler *Handler) issueUploadURL(writer http.ResponseWriter, request *http.Request) {
	var input uploadURLRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ticket, err := handler.service.IssueUploadURL(request.Context(), requestutil.Principal(request), input.CourseID, input.FileName, input.MimeType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ticket)
}

/*
POST /api/v1/videos/{id}/progress.

Response:
  - 200: ProgressUpdate
  - 400: BAD_REQUEST: Progress outside 0..100
  - 403: FORBIDDEN: Not enrolled
*/
func (handler *Handler) trackProgress(writer http.ResponseWriter, request *http.Request) {
	var input progressRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	update, err := handler.service.TrackProgress(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id"), *input.Progress)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, update)
}
