package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prepjet/prepjet/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

const userColumns = `id, email, first_name, last_name, avatar_url, role, created_at, updated_at`

// UpsertUserFromIdentity creates or updates a user record from an identity
// provider sync event. Timestamps are server-assigned: created_at is set
// once, updated_at never moves backwards. The role is preserved on update
// so a promotion to admin survives profile syncs.
func (r *Repository) UpsertUserFromIdentity(ctx context.Context, payload *model.IdentityUserPayload) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, first_name, last_name, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = GREATEST(users.updated_at, NOW())
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		payload.ID,
		payload.Email,
		payload.FirstName,
		payload.LastName,
		payload.AvatarURL,
		model.RoleUser,
	)

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by their identity-provider ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ListUsers returns users ordered by creation time, newest first, using
// cursor pagination. The cursor is the last seen user ID ("" for the first
// page). It returns up to limit users and whether more remain.
func (r *Repository) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 = '' OR (created_at, id) < (SELECT created_at, id FROM users WHERE id = $1))
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	// Fetch one extra row to detect whether more remain.
	rows, err := r.pool.Query(ctx, query, cursor, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUserFromRows(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating users: %w", err)
	}

	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}

	return users, hasMore, nil
}

// SetUserRole updates a user's role classification.
func (r *Repository) SetUserRole(ctx context.Context, id string, role model.Role) error {
	query := `
		UPDATE users
		SET role = $2, updated_at = GREATEST(updated_at, NOW())
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, role)
	if err != nil {
		return fmt.Errorf("failed to set user role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// scanUserFromRows scans a row from pgx.Rows into a User model.
func scanUserFromRows(rows pgx.Rows) (*model.User, error) {
	var user model.User
	err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
