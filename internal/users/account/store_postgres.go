// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for profile and
administration data.

# Schema Table Mapping
  - users.account: Master identity, role and status.
*/
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/edustream/internal/platform/database/schema"
	"github.com/taibuivan/edustream/internal/platform/dberr"
	"github.com/taibuivan/edustream/internal/platform/sec"
	"github.com/taibuivan/edustream/internal/users/auth"
	"github.com/taibuivan/edustream/pkg/pagination"
)

// # Repository Implementations

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new Postgres implementation for profile management.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// # AccountRepository Methods

/*
FindByID retrieves a user record from the users.account table.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *auth.User: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		auth.UserColumns(), schema.UserAccount.Table, schema.UserAccount.ID)

	user, err := auth.ScanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
UpdateProfile persists name and email changes.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: apperr.Conflict on duplicate email, apperr.NotFound, or execution failure
*/
func (repository *PostgresAccountRepository) UpdateProfile(context context.Context, user *auth.User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Name, schema.UserAccount.Email, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	user.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query, user.ID, user.Name, user.Email, user.UpdatedAt)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_repo_update_profile_failed: %w", err), "Email")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}

	return nil
}

// UpdatePassword replaces the stored hash.
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Password, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	if _, err := repository.pool.Exec(context, query, userID, newHash, time.Now()); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_repo_update_password_failed: %w", err), "User")
	}

	return nil
}

/*
List returns a page of users ordered by creation date, newest first.

Description: The role filter is an exact match. The search filter matches
name or email case-insensitively.

Parameters:
  - context: context.Context
  - filter: UserFilter
  - params: pagination.Params

Returns:
  - []*auth.User: Page of users
  - int: Total match count
  - error: Execution failure
*/
func (repository *PostgresAccountRepository) List(context context.Context, filter UserFilter, params pagination.Params) ([]*auth.User, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}

	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", schema.UserAccount.Role, len(args)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d)",
			schema.UserAccount.Name, len(args), schema.UserAccount.Email, len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, schema.UserAccount.Table, where)
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_account_repo_count_failed: %w", err), "User")
	}

	args = append(args, params.Limit, params.Offset())
	listQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		auth.UserColumns(), schema.UserAccount.Table, where,
		schema.UserAccount.CreatedAt, len(args)-1, len(args),
	)

	rows, err := repository.pool.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("postgres_account_repo_list_failed: %w", err), "User")
	}
	defer rows.Close()

	users := []*auth.User{}
	for rows.Next() {
		user, err := auth.ScanUser(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("postgres_account_repo_scan_failed: %w", err), "User")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "User")
	}

	return users, total, nil
}

// UpdateRole sets the account role.
func (repository *PostgresAccountRepository) UpdateRole(context context.Context, userID string, role sec.UserRole) error {
	return repository.updateColumn(context, userID, schema.UserAccount.Role, role)
}

// UpdateActive flips the account status.
func (repository *PostgresAccountRepository) UpdateActive(context context.Context, userID string, active bool) error {
	return repository.updateColumn(context, userID, schema.UserAccount.IsActive, active)
}

func (repository *PostgresAccountRepository) updateColumn(context context.Context, userID, column string, value any) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.UserAccount.Table, column, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, userID, value, time.Now())
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_repo_update_%s_failed: %w", column, err), "User")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}

	return nil
}
