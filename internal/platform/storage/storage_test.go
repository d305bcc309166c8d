// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestCDNSigner_Sign verifies the query layout and that the signature covers everything before it.
*/
func TestCDNSigner_Sign(t *testing.T) {
	rawKey := []byte("0123456789abcdef")
	signer, err := NewCDNSigner("https://cdn.edustream.io/", "video-key", base64.URLEncoding.EncodeToString(rawKey))
	require.NoError(t, err)

	expires := time.Unix(1_900_000_000, 0)
	signed, err := signer.Sign("videos/abc.mp4", expires)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(signed, "https://cdn.edustream.io/videos/abc.mp4?Expires=1900000000&KeyName=video-key&Signature="))

	index := strings.Index(signed, "&Signature=")
	mac := hmac.New(sha1.New, rawKey)
	mac.Write([]byte(signed[:index]))
	expected := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, expected, parsed.Query().Get("Signature"))
}

/*
TestCDNSigner_RejectsBadKey refuses keys that are not base64url.
*/
func TestCDNSigner_RejectsBadKey(t *testing.T) {
	_, err := NewCDNSigner("https://cdn.edustream.io", "k", "%%%not-base64")
	assert.Error(t, err)
}

/*
TestNewObjectKey keeps the lowercased extension under the course prefix.
*/
func TestNewObjectKey(t *testing.T) {
	first := NewObjectKey("c1", "Lesson 01.MP4")
	second := NewObjectKey("c1", "Lesson 01.MP4")

	assert.True(t, strings.HasPrefix(first, "videos/c1/"))
	assert.True(t, strings.HasSuffix(first, ".mp4"))
	assert.NotEqual(t, first, second)
	assert.True(t, OwnsKey("c1", first))
	assert.False(t, strings.Contains(strings.TrimPrefix(NewObjectKey("c1", "noext"), "videos/c1/"), "."))
}

/*
TestOwnsKey accepts only single objects directly under the course prefix.
*/
func TestOwnsKey(t *testing.T) {
	tests := []struct {
		name     string
		courseID string
		key      string
		want     bool
	}{
		{"own_object", "c1", "videos/c1/abc.mp4", true},
		{"other_course", "c2", "videos/c1/abc.mp4", false},
		{"prefix_sibling", "c1", "videos/c10/abc.mp4", false},
		{"legacy_flat_key", "c1", "videos/abc.mp4", false},
		{"bare_prefix", "c1", "videos/c1/", false},
		{"nested", "c1", "videos/c1/x/abc.mp4", false},
		{"empty_course", "", "videos//abc.mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwnsKey(tt.courseID, tt.key))
		})
	}
}
