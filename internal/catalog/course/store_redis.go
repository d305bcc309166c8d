// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/edustream/internal/platform/constants"
	"github.com/taibuivan/edustream/internal/platform/ctxutil"
)

// RedisCourseCache caches course details (with modules) keyed by course ID.
//
// Cache failures never fail a request: reads fall through to Postgres and
// write or delete errors are logged.
type RedisCourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCourseCache creates a Redis-backed course detail cache.
func NewCourseCache(client *redis.Client, ttl time.Duration) *RedisCourseCache {
	return &RedisCourseCache{client: client, ttl: ttl}
}

func courseKey(courseID string) string {
	return fmt.Sprintf("%s%s", constants.RedisPrefixCourse, courseID)
}

/*
Get returns the cached course, if present.

Returns:
  - *Course: Cached course or nil
  - bool: Whether the lookup was a hit
*/
func (cache *RedisCourseCache) Get(context context.Context, courseID string) (*Course, bool) {
	payload, err := cache.client.Get(context, courseKey(courseID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			ctxutil.GetLogger(context).WarnContext(context, "course_cache_get_failed",
				slog.String("course_id", courseID), slog.Any("error", err))
		}
		return nil, false
	}

	course := &Course{}
	if err := json.Unmarshal(payload, course); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "course_cache_decode_failed",
			slog.String("course_id", courseID), slog.Any("error", err))
		return nil, false
	}

	return course, true
}

// Set stores the course for the configured TTL.
func (cache *RedisCourseCache) Set(context context.Context, course *Course) {
	payload, err := json.Marshal(course)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "course_cache_encode_failed",
			slog.String("course_id", course.ID), slog.Any("error", err))
		return
	}

	if err := cache.client.Set(context, courseKey(course.ID), payload, cache.ttl).Err(); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "course_cache_set_failed",
			slog.String("course_id", course.ID), slog.Any("error", err))
	}
}

// Invalidate drops the cached course.
func (cache *RedisCourseCache) Invalidate(context context.Context, courseID string) {
	if err := cache.client.Del(context, courseKey(courseID)).Err(); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "course_cache_invalidate_failed",
			slog.String("course_id", courseID), slog.Any("error", err))
	}
}
