// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package course (Postgres) implements the storage layer for the catalogue.

Performance & Consistency:

  - Window Functions: COUNT(*) OVER() returns list totals without a second query.
  - JSON Aggregation: Modules are folded into the course row with json_agg.
  - Row Locks: Deleters lock the course FOR UPDATE; child writers take FOR SHARE.
*/
package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/edustream/internal/platform/database/schema"
	"github.com/taibuivan/edustream/internal/platform/dberr"
	"github.com/taibuivan/edustream/internal/platform/postgres"
	"github.com/taibuivan/edustream/pkg/pagination"
	"github.com/taibuivan/edustream/pkg/slice"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres catalogue repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// courseColumns is the c-aliased projection scanned by [scanCourse].
var courseColumns = strings.Join(slice.Map(schema.CoreCourse.Columns(), func(column string) string {
	return "c." + column
}), ", ")

// modulesAggregate folds a course's modules into one JSON array ordered by position.
var modulesAggregate = fmt.Sprintf(`COALESCE((
		SELECT json_agg(json_build_object(
			'id', m.%s, 'courseId', m.%s, 'title', m.%s, 'description', m.%s, 'position', m.%s
		) ORDER BY m.%s)
		FROM %s m
		WHERE m.%s = c.%s
	), '[]')`,
	schema.CoreCourseModule.ID, schema.CoreCourseModule.CourseID, schema.CoreCourseModule.Title,
	schema.CoreCourseModule.Description, schema.CoreCourseModule.Position,
	schema.CoreCourseModule.Position,
	schema.CoreCourseModule.Table,
	schema.CoreCourseModule.CourseID, schema.CoreCourse.ID,
)

func courseTargets(course *Course) []any {
	return []any{
		&course.ID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.InstructorID,
		&course.Level,
		&course.IsPublished,
		&course.EnrollmentCount,
		&course.RatingAvg,
		&course.CreatedAt,
		&course.UpdatedAt,
	}
}

// # Course Lookups

/*
List returns a filtered, paginated slice of courses and the total count.

Parameters:
  - context: context.Context
  - filter: Filter (levels, search, instructor, visibility)
  - params: pagination.Params

Returns:
  - []*Course: Courses (modules omitted)
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, params pagination.Params) ([]*Course, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s c WHERE TRUE`,
		courseColumns, schema.CoreCourse.Table))

	// Visibility
	if !filter.IncludeAll {
		if filter.OwnerID != "" {
			queryBuilder.WriteString(fmt.Sprintf(" AND (c.%s OR c.%s = $%d)",
				schema.CoreCourse.IsPublished, schema.CoreCourse.InstructorID, argID))
			args = append(args, filter.OwnerID)
			argID++
		} else {
			queryBuilder.WriteString(fmt.Sprintf(" AND c.%s", schema.CoreCourse.IsPublished))
		}
	}

	// Level Filtering
	if len(filter.Levels) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = ANY($%d)", schema.CoreCourse.Level, argID))
		args = append(args, slice.Map(filter.Levels, func(level Level) string { return string(level) }))
		argID++
	}

	// Instructor Filtering
	if filter.InstructorID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CoreCourse.InstructorID, argID))
		args = append(args, filter.InstructorID)
		argID++
	}

	// Search Query Filtering
	if search := strings.TrimSpace(filter.Query); search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (c.%s ILIKE $%d OR c.%s ILIKE $%d)",
			schema.CoreCourse.Title, argID, schema.CoreCourse.Description, argID))
		args = append(args, "%"+search+"%")
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY c.%s DESC, c.%s DESC LIMIT $%d OFFSET $%d",
		schema.CoreCourse.CreatedAt, schema.CoreCourse.ID, argID, argID+1))
	args = append(args, params.Limit, params.Offset())

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_course_repo_list_failed: %w", err), "Course")
	}
	defer rows.Close()

	courses := []*Course{}
	var totalCount int
	for rows.Next() {
		course := &Course{}
		if err := rows.Scan(append(courseTargets(course), &totalCount)...); err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("postgres_course_repo_scan_failed: %w", err), "Course")
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Course")
	}

	return courses, totalCount, nil
}

// FindByID loads a course with its modules by primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Course, error) {
	return repository.findOne(context, schema.CoreCourse.ID, id)
}

// FindBySlug loads a course with its modules by slug.
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Course, error) {
	return repository.findOne(context, schema.CoreCourse.Slug, slug)
}

func (repository *PostgresRepository) findOne(context context.Context, column, value string) (*Course, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s c WHERE c.%s = $1`,
		courseColumns, modulesAggregate, schema.CoreCourse.Table, column)

	course := &Course{}
	var modulesJSON []byte
	if err := repository.pool.QueryRow(context, query, value).Scan(append(courseTargets(course), &modulesJSON)...); err != nil {
		return nil, dberr.Wrap(err, "Course")
	}

	if err := json.Unmarshal(modulesJSON, &course.Modules); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_course_repo_unmarshal_modules_failed: %w", err), "Course")
	}

	return course, nil
}

// # Course Management

// Create persists a new course. A slug collision surfaces as Conflict.
func (repository *PostgresRepository) Create(context context.Context, course *Course) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		schema.CoreCourse.Table, schema.List(schema.CoreCourse.Columns()))

	now := time.Now()
	course.CreatedAt, course.UpdatedAt = now, now
	if course.Modules == nil {
		course.Modules = []Module{}
	}

	_, err := repository.pool.Exec(context, query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.InstructorID,
		course.Level,
		course.IsPublished,
		course.EnrollmentCount,
		course.RatingAvg,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_course_repo_create_failed: %w", err), "Course slug")
	}

	return nil
}

// Update persists the mutable course fields.
func (repository *PostgresRepository) Update(context context.Context, course *Course) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7 WHERE %s = $1`,
		schema.CoreCourse.Table,
		schema.CoreCourse.Title,
		schema.CoreCourse.Slug,
		schema.CoreCourse.Description,
		schema.CoreCourse.Level,
		schema.CoreCourse.IsPublished,
		schema.CoreCourse.UpdatedAt,
		schema.CoreCourse.ID,
	)

	course.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.Level,
		course.IsPublished,
		course.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_course_repo_update_failed: %w", err), "Course slug")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Course")
	}

	return nil
}

/*
Delete removes a course and its videos after the enrollment guard.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - []string: Storage keys of the removed videos
  - error: ErrCourseHasEnrollments, apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) ([]string, error) {
	lockCourse := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreCourse.ID, schema.CoreCourse.Table, schema.CoreCourse.ID)

	hasEnrollments := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.UserEnrollment.Table, schema.UserEnrollment.CourseID)

	deleteVideos := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s`,
		schema.CoreVideo.Table, schema.CoreVideo.CourseID, schema.CoreVideo.StorageKey)

	deleteCourse := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreCourse.Table, schema.CoreCourse.ID)

	var storageKeys []string
	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		var lockedID string
		if err := tx.QueryRow(context, lockCourse, id).Scan(&lockedID); err != nil {
			return dberr.Wrap(err, "Course")
		}

		var enrolled bool
		if err := tx.QueryRow(context, hasEnrollments, id).Scan(&enrolled); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_enrollment_guard_failed: %w", err), "Course")
		}
		if enrolled {
			return ErrCourseHasEnrollments
		}

		rows, err := tx.Query(context, deleteVideos, id)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_delete_videos_failed: %w", err), "Video")
		}
		keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_collect_keys_failed: %w", err), "Video")
		}
		storageKeys = keys

		if _, err := tx.Exec(context, deleteCourse, id); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_delete_failed: %w", err), "Course")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return storageKeys, nil
}

// # Modules

// FindModule loads a module scoped to its course.
func (repository *PostgresRepository) FindModule(context context.Context, courseID, moduleID string) (*Module, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		schema.List(schema.CoreCourseModule.Columns()), schema.CoreCourseModule.Table,
		schema.CoreCourseModule.ID, schema.CoreCourseModule.CourseID)

	module := &Module{}
	err := repository.pool.QueryRow(context, query, moduleID, courseID).Scan(
		&module.ID,
		&module.CourseID,
		&module.Title,
		&module.Description,
		&module.Position,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Module")
	}

	return module, nil
}

// CreateModule inserts a module, appending it after the last sibling when Position is zero.
func (repository *PostgresRepository) CreateModule(context context.Context, module *Module) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, 0), (SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $2)))
		RETURNING %s`,
		schema.CoreCourseModule.Table,
		schema.CoreCourseModule.ID, schema.CoreCourseModule.CourseID, schema.CoreCourseModule.Title,
		schema.CoreCourseModule.Description, schema.CoreCourseModule.Position,
		schema.CoreCourseModule.Position, schema.CoreCourseModule.Table, schema.CoreCourseModule.CourseID,
		schema.CoreCourseModule.Position,
	)

	err := repository.pool.QueryRow(context, query,
		module.ID, module.CourseID, module.Title, module.Description, module.Position,
	).Scan(&module.Position)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_course_repo_create_module_failed: %w", err), "Module")
	}

	return nil
}

// UpdateModule persists the mutable module fields.
func (repository *PostgresRepository) UpdateModule(context context.Context, module *Module) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3, %s = $4, %s = $5 WHERE %s = $1 AND %s = $2`,
		schema.CoreCourseModule.Table,
		schema.CoreCourseModule.Title, schema.CoreCourseModule.Description, schema.CoreCourseModule.Position,
		schema.CoreCourseModule.ID, schema.CoreCourseModule.CourseID,
	)

	tag, err := repository.pool.Exec(context, query,
		module.ID, module.CourseID, module.Title, module.Description, module.Position)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_course_repo_update_module_failed: %w", err), "Module")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Module")
	}

	return nil
}

// DeleteModule removes a module once no video references it.
func (repository *PostgresRepository) DeleteModule(context context.Context, courseID, moduleID string) error {
	lockModule := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 FOR UPDATE`,
		schema.CoreCourseModule.ID, schema.CoreCourseModule.Table,
		schema.CoreCourseModule.ID, schema.CoreCourseModule.CourseID)

	inUse := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.CoreVideo.Table, schema.CoreVideo.ModuleID)

	deleteModule := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CoreCourseModule.Table, schema.CoreCourseModule.ID)

	return postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		var lockedID string
		if err := tx.QueryRow(context, lockModule, moduleID, courseID).Scan(&lockedID); err != nil {
			return dberr.Wrap(err, "Module")
		}

		var referenced bool
		if err := tx.QueryRow(context, inUse, moduleID).Scan(&referenced); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_module_guard_failed: %w", err), "Module")
		}
		if referenced {
			return ErrModuleInUse
		}

		if _, err := tx.Exec(context, deleteModule, moduleID); err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_delete_module_failed: %w", err), "Module")
		}

		return nil
	})
}

// # Reviews

// UpsertReview writes the review and recomputes the course average atomically.
func (repository *PostgresRepository) UpsertReview(context context.Context, review *Review) (*float64, error) {
	upsert := fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (%s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s
		RETURNING %s, %s`,
		schema.CoreCourseReview.Table, schema.List(schema.CoreCourseReview.Columns()),
		schema.CoreCourseReview.CourseID, schema.CoreCourseReview.UserID,
		schema.CoreCourseReview.Rating, schema.CoreCourseReview.Rating,
		schema.CoreCourseReview.Comment, schema.CoreCourseReview.Comment,
		schema.CoreCourseReview.UpdatedAt, schema.CoreCourseReview.UpdatedAt,
		schema.CoreCourseReview.CreatedAt, schema.CoreCourseReview.UpdatedAt,
	)

	var average *float64
	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if err := repository.lockCourse(context, tx, review.CourseID); err != nil {
			return err
		}

		err := tx.QueryRow(context, upsert,
			review.CourseID, review.UserID, review.Rating, review.Comment, time.Now(),
		).Scan(&review.CreatedAt, &review.UpdatedAt)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_upsert_review_failed: %w", err), "Review")
		}

		average, err = repository.recomputeRating(context, tx, review.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return average, nil
}

// ListReviews returns one page of reviews with the reviewer's name.
func (repository *PostgresRepository) ListReviews(context context.Context, courseID string, params pagination.Params) ([]*Review, int, error) {
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, a.%s, r.%s, r.%s, r.%s, r.%s, COUNT(*) OVER() AS total_count
		FROM %s r
		JOIN %s a ON a.%s = r.%s
		WHERE r.%s = $1
		ORDER BY r.%s DESC
		LIMIT $2 OFFSET $3`,
		schema.CoreCourseReview.CourseID, schema.CoreCourseReview.UserID, schema.UserAccount.Name,
		schema.CoreCourseReview.Rating, schema.CoreCourseReview.Comment,
		schema.CoreCourseReview.CreatedAt, schema.CoreCourseReview.UpdatedAt,
		schema.CoreCourseReview.Table,
		schema.UserAccount.Table, schema.UserAccount.ID, schema.CoreCourseReview.UserID,
		schema.CoreCourseReview.CourseID,
		schema.CoreCourseReview.UpdatedAt,
	)

	rows, err := repository.pool.Query(context, query, courseID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_course_repo_list_reviews_failed: %w", err), "Review")
	}
	defer rows.Close()

	reviews := []*Review{}
	var totalCount int
	for rows.Next() {
		review := &Review{}
		if err := rows.Scan(
			&review.CourseID,
			&review.UserID,
			&review.UserName,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("postgres_course_repo_scan_review_failed: %w", err), "Review")
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Review")
	}

	return reviews, totalCount, nil
}

// DeleteReview removes the review and recomputes the course average atomically.
func (repository *PostgresRepository) DeleteReview(context context.Context, courseID, userID string) (*float64, error) {
	deleteReview := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CoreCourseReview.Table, schema.CoreCourseReview.CourseID, schema.CoreCourseReview.UserID)

	var average *float64
	err := postgres.WithTx(context, repository.pool, func(tx pgx.Tx) error {
		if err := repository.lockCourse(context, tx, courseID); err != nil {
			return err
		}

		tag, err := tx.Exec(context, deleteReview, courseID, userID)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_course_repo_delete_review_failed: %w", err), "Review")
		}
		if tag.RowsAffected() == 0 {
			return dberr.Wrap(pgx.ErrNoRows, "Review")
		}

		average, err = repository.recomputeRating(context, tx, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return average, nil
}

// lockCourse serialises rating recomputation per course.
func (repository *PostgresRepository) lockCourse(context context.Context, tx pgx.Tx, courseID string) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CoreCourse.ID, schema.CoreCourse.Table, schema.CoreCourse.ID)

	var lockedID string
	if err := tx.QueryRow(context, query, courseID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.Wrap(err, "Course")
		}
		return dberr.Wrap(fmt.Errorf("postgres_course_repo_lock_failed: %w", err), "Course")
	}

	return nil
}

func (repository *PostgresRepository) recomputeRating(context context.Context, tx pgx.Tx, courseID string) (*float64, error) {
	selectRatings := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.CoreCourseReview.Rating, schema.CoreCourseReview.Table, schema.CoreCourseReview.CourseID)

	updateAverage := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.CoreCourse.Table, schema.CoreCourse.RatingAvg, schema.CoreCourse.UpdatedAt, schema.CoreCourse.ID)

	rows, err := tx.Query(context, selectRatings, courseID)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_course_repo_select_ratings_failed: %w", err), "Review")
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_course_repo_collect_ratings_failed: %w", err), "Review")
	}

	average := AverageRating(ratings)
	if _, err := tx.Exec(context, updateAverage, courseID, average, time.Now()); err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_course_repo_update_rating_failed: %w", err), "Course")
	}

	return average, nil
}
