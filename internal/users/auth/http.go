// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/edustream/internal/platform/request"
	"github.com/taibuivan/edustream/internal/platform/respond"
)

// # Definitions & Constructors

// CredentialService is the subset of [Service] the HTTP layer needs.
type CredentialService interface {
	Register(ctx context.Context, input RegisterInput) (*TokenPair, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*AccessGrant, error)
	RequestPasswordReset(ctx context.Context, email string) (*ResetRequest, error)
	CompletePasswordReset(ctx context.Context, rawToken, newPassword string) error
}

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the public entry points of the user lifecycle
// (Registration, Login, Refresh, Password Reset).
type Handler struct {
	authService CredentialService
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service CredentialService) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register                    : Creates a new account.
//   - POST /login                       : Authenticates and returns a token pair.
//   - POST /refresh-token               : Exchanges a refresh token for an access token.
//   - POST /forgot-password             : Issues a password reset token.
//   - PUT  /reset-password/{resetToken} : Sets a new password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refresh)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Put("/reset-password/{resetToken}", handler.resetPassword)

	return router
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Response:
  - 201: TokenPair: Created user with access and refresh tokens
  - 400: VALIDATION_ERROR: Bad input
  - 409: CONFLICT: Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, pair)
}

/*
Login authenticates a user and returns a token pair.

POST /api/v1/auth/login

Response:
  - 200: TokenPair
  - 401: UNAUTHORIZED: Invalid credentials
  - 403: FORBIDDEN: Account deactivated
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh-token

Response:
  - 200: AccessGrant
  - 401: UNAUTHORIZED: Expired or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	grant, err := handler.authService.RefreshAccessToken(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, grant)
}

/*
ForgotPassword issues a reset token for the account.

POST /api/v1/auth/forgot-password

Response:
  - 200: ResetRequest: Confirmation message
  - 404: NOT_FOUND: No account with that email
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
ResetPassword completes the reset with the token from the URL.

PUT /api/v1/auth/reset-password/{resetToken}

Response:
  - 200: Confirmation message
  - 400: BAD_REQUEST: Invalid or expired token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token := requestutil.Param(request, FieldResetToken)
	if err := handler.authService.CompletePasswordReset(request.Context(), token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"message": ResetCompletedMessage})
}
