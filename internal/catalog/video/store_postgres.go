// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package video

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/edustream/internal/platform/database/schema"
	"github.com/taibuivan/edustream/internal/platform/dberr"
	"github.com/taibuivan/edustream/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres video repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var videoColumns = schema.List(schema.CoreVideo.Columns())

func scanVideo(row pgx.Row) (*Video, error) {
	video := &Video{}
	err := row.Scan(
		&video.ID,
		&video.CourseID,
		&video.ModuleID,
		&video.Title,
		&video.Description,
		&video.StorageKey,
		&video.DurationSeconds,
		&video.Position,
		&video.IsPublished,
		&video.ViewCount,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return video, nil
}

// # Lookups

// ListByCourse returns the course's videos ordered by position.
func (repository *PostgresRepository) ListByCourse(context context.Context, courseID string, publishedOnly bool) ([]*Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND ($2 = FALSE OR %s) ORDER BY %s, %s`,
		videoColumns, schema.CoreVideo.Table,
		schema.CoreVideo.CourseID, schema.CoreVideo.IsPublished,
		schema.CoreVideo.Position, schema.CoreVideo.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, courseID, publishedOnly)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_video_repo_list_failed: %w", err), "Video")
	}
	defer rows.Close()

	videos := []*Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, dberr.Wrap(fmt.Errorf("postgres_video_repo_scan_failed: %w", err), "Video")
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Video")
	}

	return videos, nil
}

// FindByID loads one video.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		videoColumns, schema.CoreVideo.Table, schema.CoreVideo.ID)

	video, err := scanVideo(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Video")
	}

	return video, nil
}

// # Mutations

/*
Create persists a video under a share lock on its course and module.

Parameters:
  - context: context.Context
  - video: *Video (Position 0 means "append")

Returns:
  - error: ErrModuleMismatch, ErrStorageKeyInUse, apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) Create(context context.Context, video *Video) error {
	lockCourse := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR SHARE`,
		schema.CoreCourse.ID, schema.CoreCourse.Table, schema.CoreCourse.ID)

	nextPosition := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1`,
		schema.CoreVideo.Position, schema.CoreVideo.Table, schema.CoreVideo.CourseID)

	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		schema.CoreVideo.Table, videoColumns)

	now := time.Now()
	video.CreatedAt, video.UpdatedAt = now, now

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		var lockedID string
		if err := tx.QueryRow(context, lockCourse, video.CourseID).Scan(&lockedID); err != nil {
			return dberr.Wrap(err, "Course")
		}

		if err := repository.checkModule(context, tx, video); err != nil {
			return err
		}

		if video.Position == 0 {
			if err := tx.QueryRow(context, nextPosition, video.CourseID).Scan(&video.Position); err != nil {
				return dberr.Wrap(fmt.Errorf("postgres_video_repo_next_position_failed: %w", err), "Video")
			}
		}

		_, err := tx.Exec(context, insert,
			video.ID,
			video.CourseID,
			video.ModuleID,
			video.Title,
			video.Description,
			video.StorageKey,
			video.DurationSeconds,
			video.Position,
			video.IsPublished,
			video.ViewCount,
			video.CreatedAt,
			video.UpdatedAt,
		)
		if err != nil {
			if dberr.IsUniqueViolation(err) {
				return ErrStorageKeyInUse
			}
			return dberr.Wrap(fmt.Errorf("postgres_video_repo_create_failed: %w", err), "Video")
		}

		return nil
	})
}

// Update persists the mutable metadata, re-checking module membership.
func (repository *PostgresRepository) Update(context context.Context, video *Video) error {
	update := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8 WHERE %s = $1`,
		schema.CoreVideo.Table,
		schema.CoreVideo.ModuleID,
		schema.CoreVideo.Title,
		schema.CoreVideo.Description,
		schema.CoreVideo.DurationSeconds,
		schema.CoreVideo.Position,
		schema.CoreVideo.IsPublished,
		schema.CoreVideo.UpdatedAt,
		schema.CoreVideo.ID,
	)

	video.UpdatedAt = time.Now()

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if err := repository.checkModule(context, tx, video); err != nil {
			return err
		}

		tag, err := tx.Exec(context, update,
			video.ID,
			video.ModuleID,
			video.Title,
			video.Description,
			video.DurationSeconds,
			video.Position,
			video.IsPublished,
			video.UpdatedAt,
		)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_video_repo_update_failed: %w", err), "Video")
		}
		if tag.RowsAffected() == 0 {
			return dberr.Wrap(pgx.ErrNoRows, "Video")
		}

		return nil
	})
}

// checkModule share-locks the module so its deletion guard cannot interleave.
func (repository *PostgresRepository) checkModule(context context.Context, tx pgx.Tx, video *Video) error {
	if video.ModuleID == nil {
		return nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR SHARE`,
		schema.CoreCourseModule.CourseID, schema.CoreCourseModule.Table, schema.CoreCourseModule.ID)

	var courseID string
	if err := tx.QueryRow(context, query, *video.ModuleID).Scan(&courseID); err != nil {
		return dberr.Wrap(err, "Module")
	}
	if courseID != video.CourseID {
		return ErrModuleMismatch
	}

	return nil
}

// Delete removes the video and returns its storage key.
func (repository *PostgresRepository) Delete(context context.Context, id string) (string, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		schema.CoreVideo.Table, schema.CoreVideo.ID, schema.CoreVideo.StorageKey)

	var storageKey string
	if err := repository.pool.QueryRow(context, query, id).Scan(&storageKey); err != nil {
		return "", dberr.Wrap(err, "Video")
	}

	return storageKey, nil
}

// IncrementViewCount bumps the counter in place.
func (repository *PostgresRepository) IncrementViewCount(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		schema.CoreVideo.Table, schema.CoreVideo.ViewCount, schema.CoreVideo.ViewCount, schema.CoreVideo.ID)

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_video_repo_increment_views_failed: %w", err), "Video")
	}

	return nil
}
