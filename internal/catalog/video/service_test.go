// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edustream/internal/access"
	"github.com/taibuivan/edustream/internal/catalog/course"
	"github.com/taibuivan/edustream/internal/learning"
	"github.com/taibuivan/edustream/internal/platform/apperr"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/internal/platform/storage"
)

// # Fakes

type memoryRepository struct {
	mu       sync.Mutex
	videos   map[string]*Video
	modules  map[string]string // moduleID -> courseID
	failNext bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{videos: map[string]*Video{}, modules: map[string]string{}}
}

func (repository *memoryRepository) ListByCourse(_ context.Context, courseID string, publishedOnly bool) ([]*Video, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	result := []*Video{}
	for _, video := range repository.videos {
		if video.CourseID == courseID && (!publishedOnly || video.IsPublished) {
			copied := *video
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*Video, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	video, ok := repository.videos[id]
	if !ok {
		return nil, apperr.NotFound("Video")
	}
	copied := *video
	return &copied, nil
}

func (repository *memoryRepository) checkModule(video *Video) error {
	if video.ModuleID == nil {
		return nil
	}
	owner, ok := repository.modules[*video.ModuleID]
	if !ok {
		return apperr.NotFound("Module")
	}
	if owner != video.CourseID {
		return ErrModuleMismatch
	}
	return nil
}

func (repository *memoryRepository) Create(_ context.Context, video *Video) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.failNext {
		repository.failNext = false
		return apperr.Internal(errors.New("insert failed"))
	}
	if err := repository.checkModule(video); err != nil {
		return err
	}
	for _, existing := range repository.videos {
		if existing.StorageKey == video.StorageKey {
			return ErrStorageKeyInUse
		}
	}
	if video.Position == 0 {
		next := 1
		for _, existing := range repository.videos {
			if existing.CourseID == video.CourseID && existing.Position >= next {
				next = existing.Position + 1
			}
		}
		video.Position = next
	}
	copied := *video
	repository.videos[video.ID] = &copied
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, video *Video) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if err := repository.checkModule(video); err != nil {
		return err
	}
	copied := *video
	repository.videos[video.ID] = &copied
	return nil
}

func (repository *memoryRepository) Delete(_ context.Context, id string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	video, ok := repository.videos[id]
	if !ok {
		return "", apperr.NotFound("Video")
	}
	delete(repository.videos, id)
	return video.StorageKey, nil
}

func (repository *memoryRepository) IncrementViewCount(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.videos[id].ViewCount++
	return nil
}

type courseTable map[string]*course.Course

func (table courseTable) FindByID(_ context.Context, id string) (*course.Course, error) {
	found, ok := table[id]
	if !ok {
		return nil, apperr.NotFound("Course")
	}
	copied := *found
	return &copied, nil
}

type fakeObjectStore struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
}

func (store *fakeObjectStore) IssuePlaybackURL(_ context.Context, storageKey string, ttl time.Duration) (string, error) {
	return "https://cdn.test/" + storageKey + "?ttl=" + ttl.String(), nil
}

func (store *fakeObjectStore) IssueUploadURL(_ context.Context, courseID, fileName, _ string, _ time.Duration) (*storage.UploadTicket, error) {
	key := storage.NewObjectKey(courseID, fileName)
	return &storage.UploadTicket{URL: "https://upload.test/" + key, StorageKey: key}, nil
}

func (store *fakeObjectStore) Upload(_ context.Context, storageKey, _ string, body io.Reader) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.uploaded[storageKey] = string(content)
	return nil
}

func (store *fakeObjectStore) DeleteObject(_ context.Context, storageKey string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.deleted = append(store.deleted, storageKey)
	delete(store.uploaded, storageKey)
	return nil
}

type enrollmentLedger struct {
	enrolled map[string]bool // userID + "/" + courseID
}

func (ledger *enrollmentLedger) IsEnrolled(_ context.Context, userID, courseID string) (bool, error) {
	return ledger.enrolled[userID+"/"+courseID], nil
}

func (ledger *enrollmentLedger) TrackProgress(_ context.Context, principal *access.Principal, videoID string, progress int) (*learning.ProgressUpdate, error) {
	return &learning.ProgressUpdate{VideoID: videoID, Progress: progress, Completed: learning.IsCompleted(progress)}, nil
}

// # Fixture

type fixture struct {
	service    *Service
	repository *memoryRepository
	objects    *fakeObjectStore
	ledger     *enrollmentLedger
}

var (
	instructor = &access.Principal{UserID: "inst-1", Role: sec.RoleInstructor}
	otherTutor = &access.Principal{UserID: "inst-2", Role: sec.RoleInstructor}
	learner    = &access.Principal{UserID: "user-1", Role: sec.RoleUser}
	stranger   = &access.Principal{UserID: "user-2", Role: sec.RoleUser}
)

func newFixture() *fixture {
	courses := courseTable{
		"course-1": {ID: "course-1", Title: "Go", InstructorID: "inst-1", IsPublished: true},
		"draft-1":  {ID: "draft-1", Title: "Draft", InstructorID: "inst-1"},
		"course-2": {ID: "course-2", Title: "Rust", InstructorID: "inst-2", IsPublished: true},
	}
	repository := newMemoryRepository()
	repository.modules["module-1"] = "course-1"
	repository.modules["module-2"] = "course-2"

	objects := &fakeObjectStore{uploaded: map[string]string{}}
	ledger := &enrollmentLedger{enrolled: map[string]bool{"user-1/course-1": true}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	options := Options{PlaybackTTL: time.Hour, UploadTTL: 15 * time.Minute}

	return &fixture{
		service:    NewService(repository, courses, objects, ledger, options, logger),
		repository: repository,
		objects:    objects,
		ledger:     ledger,
	}
}

func (fixture *fixture) seed(t *testing.T, courseID string, published bool) *Video {
	t.Helper()
	video, err := fixture.service.Create(context.Background(), instructor, CreateInput{
		CourseID:    courseID,
		Title:       "Intro",
		StorageKey:  storage.NewObjectKey(courseID, "seed.mp4"),
		IsPublished: published,
	})
	require.NoError(t, err)
	return video
}

// # Tests

func TestIsAllowedMimeType(t *testing.T) {
	assert.True(t, IsAllowedMimeType("video/mp4"))
	assert.True(t, IsAllowedMimeType("video/quicktime"))
	assert.False(t, IsAllowedMimeType("image/png"))
	assert.False(t, IsAllowedMimeType(""))
}

func TestService_Create_Upload(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()

	_, err := fixture.service.Create(ctx, instructor, CreateInput{
		CourseID: "course-1",
		Title:    "Lesson",
		File:     strings.NewReader("bytes"),
		FileName: "clip.png",
		MimeType: "image/png",
	})
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	assert.Empty(t, fixture.objects.uploaded)

	video, err := fixture.service.Create(ctx, instructor, CreateInput{
		CourseID: "course-1",
		Title:    "Lesson",
		File:     strings.NewReader("bytes"),
		FileName: "Clip.MP4",
		MimeType: "video/mp4",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(video.StorageKey, "videos/course-1/"))
	assert.True(t, strings.HasSuffix(video.StorageKey, ".mp4"))
	assert.Equal(t, 1, video.Position)
	assert.Equal(t, "bytes", fixture.objects.uploaded[video.StorageKey])

	second := fixture.seed(t, "course-1", true)
	assert.Equal(t, 2, second.Position)
}

func TestService_Create_ReleasesObjectWhenInsertFails(t *testing.T) {
	fixture := newFixture()
	fixture.repository.failNext = true

	_, err := fixture.service.Create(context.Background(), instructor, CreateInput{
		CourseID: "course-1",
		Title:    "Lesson",
		File:     strings.NewReader("bytes"),
		FileName: "clip.mp4",
		MimeType: "video/mp4",
	})
	require.Error(t, err)
	assert.Len(t, fixture.objects.deleted, 1)
	assert.Empty(t, fixture.objects.uploaded)
}

func TestService_Create_Guards(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()

	_, err := fixture.service.Create(ctx, otherTutor, CreateInput{CourseID: "course-1", Title: "X", StorageKey: "videos/course-1/a.mp4"})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	for _, key := range []string{"elsewhere/a.mp4", "videos/a.mp4", "videos/course-1/", "videos/course-1/nested/a.mp4"} {
		_, err = fixture.service.Create(ctx, instructor, CreateInput{CourseID: "course-1", Title: "X", StorageKey: key})
		assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"), key)
	}

	foreign := "module-2"
	_, err = fixture.service.Create(ctx, instructor, CreateInput{CourseID: "course-1", ModuleID: &foreign, Title: "X", StorageKey: "videos/course-1/a.mp4"})
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))

	own := "module-1"
	video, err := fixture.service.Create(ctx, instructor, CreateInput{CourseID: "course-1", ModuleID: &own, Title: "X", StorageKey: "videos/course-1/a.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "module-1", *video.ModuleID)
}

func TestService_Get_Playback(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()
	video := fixture.seed(t, "course-1", true)

	managed, err := fixture.service.Get(ctx, instructor, video.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, managed.PlaybackURL)

	enrolled, err := fixture.service.Get(ctx, learner, video.ID)
	require.NoError(t, err)
	assert.Contains(t, enrolled.PlaybackURL, video.StorageKey)
	assert.Equal(t, int64(2), enrolled.ViewCount)

	outsider, err := fixture.service.Get(ctx, stranger, video.ID)
	require.NoError(t, err)
	assert.Empty(t, outsider.PlaybackURL)

	anonymous, err := fixture.service.Get(ctx, nil, video.ID)
	require.NoError(t, err)
	assert.Empty(t, anonymous.PlaybackURL)

	stored, err := fixture.repository.FindByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.ViewCount)
}

func TestService_Get_HidesDrafts(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()
	draftVideo := fixture.seed(t, "course-1", false)
	draftCourseVideo := fixture.seed(t, "draft-1", true)

	_, err := fixture.service.Get(ctx, learner, draftVideo.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = fixture.service.Get(ctx, learner, draftCourseVideo.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	visible, err := fixture.service.ListByCourse(ctx, learner, "course-1")
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := fixture.service.ListByCourse(ctx, instructor, "course-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = fixture.service.ListByCourse(ctx, learner, "draft-1")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_Update(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()
	video := fixture.seed(t, "course-1", false)

	title := "  Renamed  "
	published := true
	updated, err := fixture.service.Update(ctx, instructor, video.ID, UpdateInput{Title: &title, IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.IsPublished)

	own := "module-1"
	updated, err = fixture.service.Update(ctx, instructor, video.ID, UpdateInput{ModuleID: &own})
	require.NoError(t, err)
	require.NotNil(t, updated.ModuleID)

	none := ""
	updated, err = fixture.service.Update(ctx, instructor, video.ID, UpdateInput{ModuleID: &none})
	require.NoError(t, err)
	assert.Nil(t, updated.ModuleID)

	foreign := "module-2"
	_, err = fixture.service.Update(ctx, instructor, video.ID, UpdateInput{ModuleID: &foreign})
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))

	_, err = fixture.service.Update(ctx, otherTutor, video.ID, UpdateInput{Title: &title})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestService_Delete_ReleasesStorage(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()
	video := fixture.seed(t, "course-1", true)

	err := fixture.service.Delete(ctx, learner, video.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	require.NoError(t, fixture.service.Delete(ctx, instructor, video.ID))
	assert.Equal(t, []string{video.StorageKey}, fixture.objects.deleted)

	_, err = fixture.service.Get(ctx, instructor, video.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_IssueUploadURL(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()

	_, err := fixture.service.IssueUploadURL(ctx, learner, "course-1", "a.mp4", "video/mp4")
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = fixture.service.IssueUploadURL(ctx, instructor, "course-1", "a.gif", "image/gif")
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	ticket, err := fixture.service.IssueUploadURL(ctx, instructor, "course-1", "a.mp4", "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.StorageKey, "videos/course-1/"))
	assert.Contains(t, ticket.URL, ticket.StorageKey)

	video, err := fixture.service.Create(ctx, instructor, CreateInput{CourseID: "course-1", Title: "Uploaded", StorageKey: ticket.StorageKey})
	require.NoError(t, err)
	assert.Equal(t, ticket.StorageKey, video.StorageKey)
}

/*
TestService_Create_StorageKeyStaysWithItsCourse stops another instructor from
attaching a course's object to their own course, and from deleting it later.
*/
func TestService_Create_StorageKeyStaysWithItsCourse(t *testing.T) {
	fixture := newFixture()
	ctx := context.Background()
	original := fixture.seed(t, "course-1", true)

	_, err := fixture.service.Create(ctx, otherTutor, CreateInput{CourseID: "course-2", Title: "Copy", StorageKey: original.StorageKey})
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)

	copies, err := fixture.service.ListByCourse(ctx, otherTutor, "course-2")
	require.NoError(t, err)
	assert.Empty(t, copies)

	// A second video in the same course cannot share the object either.
	_, err = fixture.service.Create(ctx, instructor, CreateInput{CourseID: "course-1", Title: "Again", StorageKey: original.StorageKey})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	assert.Empty(t, fixture.objects.deleted)

	stored, err := fixture.service.Get(ctx, instructor, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.StorageKey, stored.StorageKey)
}
