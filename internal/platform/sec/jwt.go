// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via narrow interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/edustream/internal/platform/constants"
)

var (
	// ErrTokenExpired is returned when a token's exp claim has passed.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid covers bad signatures, wrong token type and malformed input.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// AuthClaims represents the payload embedded inside a signed token.
//
// Role is informational only. Authorization decisions use the role loaded from
// the database for every request, so a role change takes effect immediately.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid"`
	Role   string `json:"rol,omitempty"`
	Type   string `json:"typ"`
}

// TokenService signs and verifies HS256 access and refresh tokens.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("sec: token secrets must not be empty")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        constants.AuthIssuer,
		now:           time.Now,
	}, nil
}

// AccessTTL returns the configured lifetime of access tokens.
func (service *TokenService) AccessTTL() time.Duration {
	return service.accessTTL
}

// GenerateAccessToken creates a short-lived bearer token for a user.
func (service *TokenService) GenerateAccessToken(userID, role string) (string, error) {
	return service.sign(userID, role, constants.TokenTypeAccess, service.accessTTL, service.accessSecret)
}

// GenerateRefreshToken creates a long-lived token that can only mint access tokens.
func (service *TokenService) GenerateRefreshToken(userID string) (string, error) {
	return service.sign(userID, "", constants.TokenTypeRefresh, service.refreshTTL, service.refreshSecret)
}

// VerifyToken checks an access token. It satisfies the middleware verifier contract.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, constants.TokenTypeAccess, service.accessSecret)
}

// VerifyRefreshToken checks a refresh token.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, constants.TokenTypeRefresh, service.refreshSecret)
}

func (service *TokenService) sign(userID, role, tokenType string, timeToLive time.Duration, secret []byte) (string, error) {
	currentTime := service.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Role:   role,
		Type:   tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (service *TokenService) verify(tokenString, tokenType string, secret []byte) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(service.issuer),
		jwt.WithTimeFunc(service.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.Type != tokenType || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
