// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/catalog/course"
	"github.com/taibuivan/edustream/internal/catalog/video"
	"github.com/taibuivan/edustream/internal/platform/config"
	"github.com/taibuivan/edustream/internal/platform/middleware"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/internal/users/account"
	"github.com/taibuivan/edustream/internal/users/auth"
)

// # Fakes

// expiredVerifier rejects every bearer token as expired.
type expiredVerifier struct{}

func (expiredVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return nil, sec.ErrTokenExpired
}

type nobodyLoader struct{}

func (nobodyLoader) LoadPrincipal(context.Context, string) (*access.Principal, error) {
	return nil, nil
}

// credentials answers login and refresh without storage.
type credentials struct {
	auth.CredentialService
}

func (credentials) Login(context.Context, string, string) (*auth.TokenPair, error) {
	return &auth.TokenPair{AccessToken: "fresh-access", RefreshToken: "fresh-refresh", TokenType: "Bearer"}, nil
}

func (credentials) RefreshAccessToken(context.Context, string) (*auth.AccessGrant, error) {
	return &auth.AccessGrant{AccessToken: "fresh-access", TokenType: "Bearer"}, nil
}

func newTestServer() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{ServerPort: "0", Environment: "development", MaxUploadBytes: 1 << 20}
	ok := func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) }

	server := NewServer(cfg, logger, Security{
		Verifier: expiredVerifier{},
		Loader:   nobodyLoader{},
		Limiter:  middleware.NewRateLimiter(1000, 1000),
	}, Handlers{
		Liveness:  ok,
		Readiness: ok,
		Auth:      auth.NewHandler(credentials{}),
		Account:   account.NewHandler(nil),
		Course:    course.NewHandler(nil),
		Video:     video.NewHandler(nil),
	})
	return server.Handler()
}

// # Routing

/*
TestServer_StaleTokenOnPublicRoutes lets a client with an expired access token
log in again, refresh it, and reach the health endpoints.
*/
func TestServer_StaleTokenOnPublicRoutes(t *testing.T) {
	handler := newTestServer()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"login", http.MethodPost, "/api/v1/auth/login", `{"email":"ana@example.com","password":"secret1"}`},
		{"refresh", http.MethodPost, "/api/v1/auth/refresh-token", `{"refreshToken":"r"}`},
		{"health", http.MethodGet, "/health", ""},
		{"ready", http.MethodGet, "/ready", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			request.Header.Set("Content-Type", "application/json")
			request.Header.Set("Authorization", "Bearer stale")
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
		})
	}
}

/*
TestServer_StaleTokenOnMemberRoutes still rejects an expired token where a
principal is needed.
*/
func TestServer_StaleTokenOnMemberRoutes(t *testing.T) {
	handler := newTestServer()

	for _, path := range []string{"/api/v1/users/profile", "/api/v1/courses", "/api/v1/videos/v1"} {
		request := httptest.NewRequest(http.MethodGet, path, nil)
		request.Header.Set("Authorization", "Bearer stale")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusUnauthorized, recorder.Code, path)
		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
		assert.Equal(t, "Token expired", body.Error, path)
	}
}
