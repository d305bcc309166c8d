// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storage delivers video bytes through Google Cloud Storage.
//
// # Architecture
//
// Videos never leave the bucket through the API process. Clients receive
// time-bounded signed URLs instead: a Cloud CDN signed URL when a CDN key is
// configured, otherwise a GCS V4 signed URL straight to the bucket.
// Storage keys are opaque to the rest of the system.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/taibuivan/edustream/internal/platform/constants"
	"github.com/taibuivan/edustream/pkg/uuid"
)

// Config holds the bucket and optional CDN settings.
type Config struct {
	Bucket          string
	CredentialsFile string
	CDNBaseURL      string
	CDNKeyName      string
	CDNSigningKey   string
}

// UploadTicket is a signed PUT URL together with the key the object will live under.
type UploadTicket struct {
	URL        string `json:"url"`
	StorageKey string `json:"storageKey"`
}

// GCS implements the signed delivery contract on top of a single bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	cdn    *CDNSigner
	logger *slog.Logger
	now    func() time.Time
}

// NewGCS creates a storage client for the configured bucket.
func NewGCS(ctx context.Context, cfg Config, logger *slog.Logger) (*GCS, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create client: %w", err)
	}

	var signer *CDNSigner
	if cfg.CDNBaseURL != "" && cfg.CDNKeyName != "" && cfg.CDNSigningKey != "" {
		signer, err = NewCDNSigner(cfg.CDNBaseURL, cfg.CDNKeyName, cfg.CDNSigningKey)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
	}

	logger.Info("object_storage_initialized",
		slog.String("bucket", cfg.Bucket),
		slog.Bool("cdn_enabled", signer != nil),
	)

	return &GCS{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		cdn:    signer,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close releases the underlying client.
func (gcs *GCS) Close() error {
	return gcs.client.Close()
}

// Ping confirms the bucket exists and the credentials can read its metadata.
func (gcs *GCS) Ping(ctx context.Context) error {
	if _, err := gcs.bucket.Attrs(ctx); err != nil {
		return fmt.Errorf("storage: bucket unreachable: %w", err)
	}
	return nil
}

// # Signed Delivery

// IssuePlaybackURL returns a time-bounded GET URL for a stored video.
func (gcs *GCS) IssuePlaybackURL(_ context.Context, storageKey string, ttl time.Duration) (string, error) {
	expires := gcs.now().Add(ttl)

	if gcs.cdn != nil {
		return gcs.cdn.Sign(storageKey, expires)
	}

	url, err := gcs.bucket.SignedURL(storageKey, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expires,
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to sign playback url: %w", err)
	}

	return url, nil
}

// IssueUploadURL returns a V4 signed PUT URL bound to the given content type.
// The key is placed under the course's prefix.
func (gcs *GCS) IssueUploadURL(_ context.Context, courseID, fileName, mimeType string, ttl time.Duration) (*UploadTicket, error) {
	storageKey := NewObjectKey(courseID, fileName)

	url, err := gcs.bucket.SignedURL(storageKey, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		ContentType: mimeType,
		Expires:     gcs.now().Add(ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to sign upload url: %w", err)
	}

	return &UploadTicket{URL: url, StorageKey: storageKey}, nil
}

// # Object Lifecycle

// Upload streams an object into the bucket.
func (gcs *GCS) Upload(ctx context.Context, storageKey, contentType string, body io.Reader) error {
	writer := gcs.bucket.Object(storageKey).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return fmt.Errorf("storage: failed to write object %q: %w", storageKey, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("storage: failed to finalize object %q: %w", storageKey, err)
	}

	return nil
}

// DeleteObject removes an object. A missing object is not an error.
func (gcs *GCS) DeleteObject(ctx context.Context, storageKey string) error {
	err := gcs.bucket.Object(storageKey).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("storage: failed to delete object %q: %w", storageKey, err)
	}

	gcs.logger.InfoContext(ctx, "object_deleted", slog.String("key", storageKey))
	return nil
}

// NewObjectKey builds a collision-free key under the course's prefix that
// keeps the original extension.
func NewObjectKey(courseID, fileName string) string {
	extension := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	return CoursePrefix(courseID) + uuid.New() + extension
}

// CoursePrefix is the key prefix owned by one course.
func CoursePrefix(courseID string) string {
	return constants.VideoKeyPrefix + courseID + "/"
}

// OwnsKey reports whether storageKey names a single object directly under
// the course's prefix.
func OwnsKey(courseID, storageKey string) bool {
	if courseID == "" {
		return false
	}
	name, found := strings.CutPrefix(storageKey, CoursePrefix(courseID))
	return found && name != "" && !strings.Contains(name, "/")
}
