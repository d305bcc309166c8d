// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/edustream/internal/platform/middleware"
	requestutil "github.com/taibuivan/edustream/internal/platform/request"
	"github.com/taibuivan/edustream/internal/platform/respond"
	"github.com/taibuivan/edustream/pkg/pagination"
	"github.com/taibuivan/edustream/pkg/query"
	"github.com/taibuivan/edustream/pkg/slice"
)

// # Handler Implementation

// Handler implements the HTTP layer for course discovery and management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new course [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the course domain's endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Listing, details and reviews. A bearer token, when
//     present, widens visibility to the caller's own drafts.
//   - Management (Authenticated): Ownership is checked by the service.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listCourses)
	router.Get("/{id}", handler.getCourse)
	router.Get("/{id}/reviews", handler.listReviews)

	// ## Content Management
	router.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)

		member.Post("/", handler.createCourse)
		member.Put("/{id}", handler.updateCourse)
		member.Delete("/{id}", handler.deleteCourse)

		// Modules
		member.Post("/{id}/modules", handler.addModule)
		member.Put("/{id}/modules/{moduleId}", handler.updateModule)
		member.Delete("/{id}/modules/{moduleId}", handler.deleteModule)

		// Reviews
		member.Post("/{id}/reviews", handler.upsertReview)
		member.Delete("/{id}/reviews/{userId}", handler.deleteReview)
	})

	return router
}

// # Request Payloads

type createCourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Level       string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPublished bool   `json:"isPublished"`
}

type updateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Level       *Level  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	IsPublished *bool   `json:"isPublished"`
}

type moduleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Position    int    `json:"position" validate:"gte=0"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// # Course Endpoints

/*
GET /api/v1/courses.

Request:
  - q: string (title or description search)
  - level: []string (comma separated: beginner, intermediate, advanced)
  - instructor: string (instructor ID)
  - page, limit: int

Response:
  - 200: []Course: Paginated list of courses
*/
func (handler *Handler) listCourses(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:        queryParams.Get("q"),
		InstructorID: queryParams.Get("instructor"),
		Levels: slice.Filter(
			slice.Map(query.StringSlice(queryParams.Get("level")), func(raw string) Level { return Level(raw) }),
			Level.IsValid,
		),
	}

	courses, total, err := handler.service.List(request.Context(), requestutil.Principal(request), filter, paginationParams)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, courses, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/courses/{id}.

Description: Accepts either a UUID or a slug.

Response:
  - 200: Course: With ordered modules
  - 404: NOT_FOUND: Missing, or unpublished and not managed by the caller
*/
func (handler *Handler) getCourse(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.service.Get(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, course)
}

/*
POST /api/v1/courses.

Response:
  - 201: Course
  - 403: FORBIDDEN: Caller is not an instructor or admin
  - 409: CONFLICT: Slug already taken
*/
func (handler *Handler) createCourse(writer http.ResponseWriter, request *http.Request) {
	var input createCourseRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	course, err := handler.service.Create(request.Context(), requestutil.Principal(request), CreateInput{
		Title:       input.Title,
		Description: input.Description,
		Level:       Level(input.Level),
		IsPublished: input.IsPublished,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, course)
}

// PUT /api/v1/courses/{id}.
func (handler *Handler) updateCourse(writer http.ResponseWriter, request *http.Request) {
	var input updateCourseRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	course, err := handler.service.Update(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id"), UpdateInput{
		Title:       input.Title,
		Description: input.Description,
		Level:       input.Level,
		IsPublished: input.IsPublished,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, course)
}

/*
DELETE /api/v1/courses/{id}.

Response:
  - 204: Deleted with its videos
  - 400: BAD_REQUEST: Students are enrolled
*/
func (handler *Handler) deleteCourse(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Module Endpoints

// POST /api/v1/courses/{id}/modules.
func (handler *Handler) addModule(writer http.ResponseWriter, request *http.Request) {
	var input moduleRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	module, err := handler.service.AddModule(request.Context(), requestutil.Principal(request), requestutil.Param(request, "id"), ModuleInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, module)
}

// PUT /api/v1/courses/{id}/modules/{moduleId}.
func (handler *Handler) updateModule(writer http.ResponseWriter, request *http.Request) {
	var input moduleRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	module, err := handler.service.UpdateModule(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "id"), requestutil.Param(request, "moduleId"), ModuleInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, module)
}

/*
DELETE /api/v1/courses/{id}/modules/{moduleId}.

Response:
  - 204: Deleted
  - 400: BAD_REQUEST: Videos still reference the module
*/
func (handler *Handler) deleteModule(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.DeleteModule(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "id"), requestutil.Param(request, "moduleId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Review Endpoints

// GET /api/v1/courses/{id}/reviews.
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	reviews, total, err := handler.service.ListReviews(request.Context(), requestutil.Param(request, "id"), paginationParams)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reviews, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/courses/{id}/reviews.

Response:
  - 200: {"review", "ratingAvg"}
  - 403: FORBIDDEN: Not enrolled
*/
func (handler *Handler) upsertReview(writer http.ResponseWriter, request *http.Request) {
	var input reviewRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, average, err := handler.service.UpsertReview(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "id"), input.Rating, input.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"review":    review,
		"ratingAvg": average,
	})
}

// DELETE /api/v1/courses/{id}/reviews/{userId}.
func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	average, err := handler.service.DeleteReview(request.Context(), requestutil.Principal(request),
		requestutil.Param(request, "id"), requestutil.Param(request, "userId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"ratingAvg": average})
}
