// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain/auth"
	"tradebook/internal/infrastructure/storage/postgres"
)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO sys_users (
			id, username, password_hash, full_name,
			is_active, is_admin, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.FullName,
		user.IsActive, user.IsAdmin, user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `
		SELECT id, username, password_hash, full_name,
			   is_active, is_admin, last_login_at,
			   failed_login_attempts, locked_until,
			   created_at, updated_at, version
		FROM sys_users
		WHERE id = $1 AND deleted_at IS NULL
	`

	var user auth.User
	err := q.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FullName,
		&user.IsActive, &user.IsAdmin, &user.LastLoginAt,
		&user.FailedLoginAttempts, &user.LockedUntil,
		&user.CreatedAt, &user.UpdatedAt, &user.Version,
	)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetByUsername retrieves user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `
		SELECT id, username, password_hash, full_name,
			   is_active, is_admin, last_login_at,
			   failed_login_attempts, locked_until,
			   created_at, updated_at, version
		FROM sys_users
		WHERE username = $1 AND deleted_at IS NULL
	`

	var user auth.User
	err := q.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FullName,
		&user.IsActive, &user.IsAdmin, &user.LastLoginAt,
		&user.FailedLoginAttempts, &user.LockedUntil,
		&user.CreatedAt, &user.UpdatedAt, &user.Version,
	)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// Update updates user data with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		UPDATE sys_users SET
			password_hash = $2,
			full_name = $3,
			is_active = $4,
			is_admin = $5,
			last_login_at = $6,
			failed_login_attempts = $7,
			locked_until = $8,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $1 AND deleted_at IS NULL AND version = $9
	`

	result, err := q.Exec(ctx, query,
		user.ID, user.PasswordHash, user.FullName, user.IsActive, user.IsAdmin,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
		user.Version,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}

	user.Version++
	return nil
}

// Delete soft-deletes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	q := r.txManager.GetQuerier(ctx)

	query := `UPDATE sys_users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := q.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}

	return nil
}

// List retrieves users with filtering.
func (r *UserRepo) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, int, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `
		SELECT id, username, password_hash, full_name,
			   is_active, is_admin, last_login_at,
			   failed_login_attempts, locked_until,
			   created_at, updated_at, version
		FROM sys_users
		WHERE deleted_at IS NULL
	`
	countQuery := `SELECT COUNT(*) FROM sys_users WHERE deleted_at IS NULL`

	var args []any
	argIdx := 1

	if filter.Search != "" {
		cond := fmt.Sprintf(" AND (username ILIKE $%d OR full_name ILIKE $%d)", argIdx, argIdx)
		query += cond
		countQuery += cond
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.IsActive != nil {
		cond := fmt.Sprintf(" AND is_active = $%d", argIdx)
		query += cond
		countQuery += cond
		args = append(args, *filter.IsActive)
		argIdx++
	}

	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query += " ORDER BY username ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		var user auth.User
		err := rows.Scan(
			&user.ID, &user.Username, &user.PasswordHash, &user.FullName,
			&user.IsActive, &user.IsAdmin, &user.LastLoginAt,
			&user.FailedLoginAttempts, &user.LockedUntil,
			&user.CreatedAt, &user.UpdatedAt, &user.Version,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, total, nil
}

// Exists checks if username is taken.
func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `SELECT EXISTS(SELECT 1 FROM sys_users WHERE username = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := q.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}

	return exists, nil
}

// Ensure interface compliance
var _ auth.UserRepository = (*UserRepo)(nil)
