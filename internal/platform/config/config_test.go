// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edustream/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/edustream")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("GCS_BUCKET", "edustream-videos")
}

/*
TestLoad_Defaults verifies the documented defaults when only required keys are set.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 10*time.Minute, cfg.PasswordResetTTL)
	assert.Equal(t, 3600*time.Second, cfg.PlaybackURLTTL)
	assert.Equal(t, 3600*time.Second, cfg.UploadURLTTL)
	assert.False(t, cfg.CDNEnabled())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.ExposeResetToken)
}

/*
TestLoad_ExposeResetToken only echoes reset tokens when explicitly enabled.
*/
func TestLoad_ExposeResetToken(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.ExposeResetToken)

	t.Setenv("EXPOSE_RESET_TOKEN", "true")

	cfg, err = config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.ExposeResetToken)
}

/*
TestLoad_MissingRequired checks that a missing secret aborts startup.
*/
func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_IsOriginAllowed covers the production allow-list.
*/
func TestConfig_IsOriginAllowed(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://app.edustream.io, https://admin.edustream.io")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsOriginAllowed("https://admin.edustream.io"))
	assert.False(t, cfg.IsOriginAllowed("https://evil.example.com"))
}
