// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/edustream/internal/platform/middleware"
	requestutil "github.com/taibuivan/edustream/internal/platform/request"
	"github.com/taibuivan/edustream/internal/platform/respond"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/pkg/pagination"
)

// Handler implements the HTTP layer for profile and user management.
//
// # Security
//
// Every route requires an authenticated principal. The administration routes
// additionally require the admin role.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	// Profile
	router.Get("/profile", handler.getProfile)
	router.Put("/profile", handler.updateProfile)
	router.Put("/change-password", handler.changePassword)

	// Enrollments
	router.Get("/enrolled-courses", handler.enrolledCourses)
	router.Post("/enroll/{courseId}", handler.enroll)
	router.Post("/course-progress", handler.courseProgress)

	// Administration
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Get("/", handler.listUsers)
		admin.Put("/{id}/role", handler.changeRole)
		admin.Put("/{id}/status", handler.setStatus)
	})

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type courseProgressRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	VideoID  string `json:"videoId" validate:"required"`
	Progress *int   `json:"progress" validate:"required,min=0,max=100"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user instructor admin"`
}

type setStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// # Profile Endpoints

/*
GET /api/v1/users/profile.

Response:
  - 200: User: The authenticated user's profile
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PUT /api/v1/users/profile.

Request:
  - body: updateProfileRequest (name and/or email)

Response:
  - 200: User: The updated profile
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: Email already registered
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), principal.UserID, UpdateProfileInput{
		Name:  input.Name,
		Email: input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PUT /api/v1/users/change-password.

Response:
  - 204: Password changed
  - 401: UNAUTHORIZED: Current password is incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.ChangePassword(request.Context(), principal.UserID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Enrollment Endpoints

// GET /api/v1/users/enrolled-courses.
func (handler *Handler) enrolledCourses(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	courses, err := handler.accountService.EnrolledCourses(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, courses)
}

/*
POST /api/v1/users/enroll/{courseId}.

Response:
  - 201: Enrollment
  - 400: BAD_REQUEST: Already enrolled
  - 404: NOT_FOUND: Course missing or unpublished
*/
func (handler *Handler) enroll(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	enrollment, err := handler.accountService.Enroll(request.Context(), principal, requestutil.Param(request, "courseId"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, enrollment)
}

/*
POST /api/v1/users/course-progress.

Description: Records progress on one video of the course and returns the
recomputed course percentage.

Response:
  - 200: ProgressUpdate
  - 400: BAD_REQUEST: Video belongs to another course
  - 403: FORBIDDEN: Not enrolled
  - 404: NOT_FOUND: Video missing
*/
func (handler *Handler) courseProgress(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input courseProgressRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	update, err := handler.accountService.TrackCourseProgress(request.Context(), principal, input.CourseID, input.VideoID, *input.Progress)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, update)
}

// # Administration Endpoints

/*
GET /api/v1/users.

Request:
  - query: page, limit, role, q

Response:
  - 200: Paginated []User
  - 403: FORBIDDEN: Admin only
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := UserFilter{
		Role:   sec.UserRole(request.URL.Query().Get("role")),
		Search: request.URL.Query().Get("q"),
	}

	users, total, err := handler.accountService.ListUsers(request.Context(), requestutil.Principal(request), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

// PUT /api/v1/users/{id}/role.
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	var input changeRoleRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.ChangeRole(request.Context(),
		requestutil.Principal(request), requestutil.Param(request, "id"), sec.UserRole(input.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// PUT /api/v1/users/{id}/status.
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	var input setStatusRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.SetActive(request.Context(),
		requestutil.Principal(request), requestutil.Param(request, "id"), *input.IsActive)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
