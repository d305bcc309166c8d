// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package learning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/edustream/internal/platform/dberr"
	"github.com/taibuivan/edustream/internal/platform/postgres"
)

// PostgresRepository implements [Repository] over users.enrollment and core.videoview.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL ledger repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Enroll inserts the enrollment and increments the course counter atomically.

Description: The course row is locked FOR SHARE so a concurrent course
deletion (which takes FOR UPDATE) cannot pass its enrollment guard between
our check and insert.
*/
func (repository *PostgresRepository) Enroll(context context.Context, enrollment *Enrollment) error {
	const lockCourse = `
		SELECT ispublished FROM core.course WHERE id = $1 FOR SHARE`

	const insertEnrollment = `
		INSERT INTO users.enrollment (userid, courseid, progress, enrolledat, lastaccessedat)
		VALUES ($1, $2, 0, $3, $3)
		ON CONFLICT (userid, courseid) DO NOTHING`

	const bumpCounter = `
		UPDATE core.course SET enrollmentcount = enrollmentcount + 1 WHERE id = $1`

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		var published bool
		if err := tx.QueryRow(context, lockCourse, enrollment.CourseID).Scan(&published); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCourseUnavailable
			}
			return dberr.Wrap(fmt.Errorf("postgres_learning_repo_lock_course_failed: %w", err), "Course")
		}
		if !published {
			return ErrCourseUnavailable
		}

		tag, err := tx.Exec(context, insertEnrollment, enrollment.UserID, enrollment.CourseID, enrollment.EnrolledAt)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_learning_repo_enroll_failed: %w", err), "Enrollment")
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyEnrolled
		}

		if _, err := tx.Exec(context, bumpCounter, enrollment.CourseID); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_learning_repo_bump_counter_failed: %w", err), "Course")
		}

		return nil
	})
}

// IsEnrolled reports whether the (user, course) pair exists.
func (repository *PostgresRepository) IsEnrolled(context context.Context, userID, courseID string) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM users.enrollment WHERE userid = $1 AND courseid = $2)`

	var enrolled bool
	if err := repository.pool.QueryRow(context, query, userID, courseID).Scan(&enrolled); err != nil {
		return false, dberr.Wrap(fmt.Errorf("postgres_learning_repo_is_enrolled_failed: %w", err), "Enrollment")
	}

	return enrolled, nil
}

// ListEnrolled joins each enrollment with its course.
func (repository *PostgresRepository) ListEnrolled(context context.Context, userID string) ([]EnrolledCourse, error) {
	const query = `
		SELECT c.id, c.title, c.slug, c.level, c.instructorid, c.ispublished,
		       e.progress, e.enrolledat, e.lastaccessedat
		FROM users.enrollment e
		JOIN core.course c ON c.id = e.courseid
		WHERE e.userid = $1
		ORDER BY e.enrolledat DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_learning_repo_list_failed: %w", err), "Enrollment")
	}
	defer rows.Close()

	courses := []EnrolledCourse{}
	for rows.Next() {
		var item EnrolledCourse
		if err := rows.Scan(
			&item.Course.ID,
			&item.Course.Title,
			&item.Course.Slug,
			&item.Course.Level,
			&item.Course.InstructorID,
			&item.Course.IsPublished,
			&item.Progress,
			&item.EnrolledAt,
			&item.LastAccessedAt,
		); err != nil {
			return nil, dberr.Wrap(fmt.Errorf("postgres_learning_repo_scan_failed: %w", err), "Enrollment")
		}
		courses = append(courses, item)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Enrollment")
	}

	return courses, nil
}

// FindVideoCourse resolves a video's parent course.
func (repository *PostgresRepository) FindVideoCourse(context context.Context, videoID string) (string, error) {
	const query = `SELECT courseid FROM core.video WHERE id = $1`

	var courseID string
	if err := repository.pool.QueryRow(context, query, videoID).Scan(&courseID); err != nil {
		return "", dberr.Wrap(err, "Video")
	}

	return courseID, nil
}

// UpsertView keeps exactly one entry per (video, user); later writes overwrite.
func (repository *PostgresRepository) UpsertView(context context.Context, entry *ViewEntry) error {
	const query = `
		INSERT INTO core.videoview (videoid, userid, progress, completed, lastviewedat)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (videoid, userid) DO UPDATE
		SET progress = EXCLUDED.progress,
		    completed = EXCLUDED.completed,
		    lastviewedat = EXCLUDED.lastviewedat`

	_, err := repository.pool.Exec(context, query,
		entry.VideoID,
		entry.UserID,
		entry.Progress,
		entry.Completed,
		entry.LastViewedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_learning_repo_upsert_view_failed: %w", err), "Video view")
	}

	return nil
}

// CountCompletion recounts from the full video set of the course.
func (repository *PostgresRepository) CountCompletion(context context.Context, userID, courseID string) (int, int, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE vv.completed)
		FROM core.video v
		LEFT JOIN core.videoview vv ON vv.videoid = v.id AND vv.userid = $1
		WHERE v.courseid = $2`

	var total, completed int
	if err := repository.pool.QueryRow(context, query, userID, courseID).Scan(&total, &completed); err != nil {
		return 0, 0, dberr.Wrap(fmt.Errorf("postgres_learning_repo_count_failed: %w", err), "Course")
	}

	return total, completed, nil
}

// SetCourseProgress writes the derived percentage onto the enrollment.
func (repository *PostgresRepository) SetCourseProgress(context context.Context, userID, courseID string, progress int, accessedAt time.Time) error {
	const query = `
		UPDATE users.enrollment
		SET progress = $3, lastaccessedat = $4
		WHERE userid = $1 AND courseid = $2`

	tag, err := repository.pool.Exec(context, query, userID, courseID, progress, accessedAt)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_learning_repo_set_progress_failed: %w", err), "Enrollment")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Enrollment")
	}

	return nil
}
