// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package video manages lesson videos: their metadata, stored bytes and signed
playback links.

Video bytes live in object storage under an opaque storage key. Clients never
see the key of a stored video; they receive a short-lived playback URL when
they manage the parent course or are enrolled in it.
*/
package video

import (
	"errors"
	"slices"
	"time"
)

// Video is one lesson inside a course, optionally grouped under a module.
type Video struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"courseId"`
	ModuleID        *string   `json:"moduleId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StorageKey      string    `json:"-"`
	DurationSeconds int       `json:"durationSeconds"`
	Position        int       `json:"position"`
	IsPublished     bool      `json:"isPublished"`
	ViewCount       int64     `json:"viewCount"`
	PlaybackURL     string    `json:"playbackUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// # Upload Rules

// AllowedMimeTypes is the upload allow-list.
var AllowedMimeTypes = []string{
	"video/mp4",
	"video/quicktime",
	"video/x-msvideo",
	"video/x-ms-wmv",
}

// IsAllowedMimeType reports whether uploads of mimeType are accepted.
func IsAllowedMimeType(mimeType string) bool {
	return slices.Contains(AllowedMimeTypes, mimeType)
}

const (
	MaxTitleLength = 200

	FieldTitle      = "title"
	FieldCourseID   = "courseId"
	FieldModuleID   = "moduleId"
	FieldMimeType   = "mimeType"
	FieldStorageKey = "storageKey"
	FieldFile       = "file"
	FieldProgress   = "progress"
	FieldDuration   = "durationSeconds"
)

// ErrModuleMismatch is returned when a module does not belong to the video's course.
var ErrModuleMismatch = errors.New("module belongs to another course")

// ErrStorageKeyInUse is returned when another video already references the object.
var ErrStorageKeyInUse = errors.New("storage key already referenced")
