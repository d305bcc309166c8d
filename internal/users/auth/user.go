// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity and credential layer.

It defines the User entity and the logic for registration, login, token
refresh, and the password reset lifecycle.

# Architecture

This layer is the "Truth" of the system for identity. Other packages read
users through their own narrow repositories but never touch credentials.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the EduStream platform.
type User struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	PasswordHash        string       `json:"-"` // Explicitly omitted from JSON for security.
	Role                sec.UserRole `json:"role"`
	IsActive            bool         `json:"isActive"`
	ResetTokenHash      *string      `json:"-"`
	ResetTokenExpiresAt *time.Time   `json:"-"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Principal returns the access-control view of the user.
func (user *User) Principal() *access.Principal {
	return &access.Principal{UserID: user.ID, Role: user.Role}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refreshToken"
	FieldResetToken   = "resetToken"
)

// # Normalization

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
//
// A [cases.Caser] is stateful, so one is built per call.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}
