package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

const userColumns = `
	u.id, u.email, u.full_name, u.normalized_name, u.status, u.role,
	u.created_at, u.updated_at, u.created_by, u.updated_by,
	ARRAY(
		SELECT uo.organization_id FROM user_organizations uo
		WHERE uo.user_id = u.id
		ORDER BY uo.joined_at, uo.organization_id
	)`

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a new PostgreSQL-backed user store.
// It shares the connection pool with other stores.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

const insertUserQuery = `
	INSERT INTO users (
		id, email, full_name, normalized_name, status, role,
		created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	)
`

func insertUserArgs(user *models.User) []any {
	return []any{
		user.ID,
		user.Email,
		user.FullName,
		user.NormalizedName,
		user.Status,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
		user.CreatedBy,
		user.UpdatedBy,
	}
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if _, err := s.pool.Exec(ctx, insertUserQuery, insertUserArgs(user)...); err != nil {
		return wrapError("create user", err)
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("Created user")

	return nil
}

// CreateFirst creates user only while the users table is empty.
// SHARE ROW EXCLUSIVE conflicts with itself and with row inserts, so a
// concurrent bootstrap or Create waits until this transaction commits.
func (s *UserStore) CreateFirst(ctx context.Context, user *models.User) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return store.ErrUsersExist
		}

		_, err := tx.Exec(ctx, insertUserQuery, insertUserArgs(user)...)
		return err
	})
	switch {
	case errors.Is(err, store.ErrUsersExist):
		return err
	case err != nil:
		return wrapError("create first user", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Msg("Created bootstrap user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			full_name = $2,
			normalized_name = $3,
			status = $4,
			role = $5,
			updated_at = $6,
			updated_by = $7
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.NormalizedName,
		user.Status,
		user.Role,
		user.UpdatedAt,
		user.UpdatedBy,
	)
	if err != nil {
		return wrapError("update user", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("status", string(user.Status)).
		Msg("Updated user")

	return nil
}

// Count returns the number of users in any status.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// List returns a page of users matching the filter, oldest first.
func (s *UserStore) List(ctx context.Context, filter store.UserFilter, page store.Page) ([]*models.User, int, error) {
	page = page.Normalize()

	var conds conditions
	if filter.ExcludeDeleted {
		conds.add("u.status <> %s", models.UserStatusDeleted)
	}
	if filter.NameContains != "" {
		conds.add("u.normalized_name LIKE %s", containsPattern(filter.NameContains))
	}
	if filter.OrganizationID != uuid.Nil {
		conds.add("EXISTS (SELECT 1 FROM user_organizations m WHERE m.user_id = u.id AND m.organization_id = %s)", filter.OrganizationID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users u ` + conds.where()
	if err := s.pool.QueryRow(ctx, countQuery, conds.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users u ` + conds.where() +
		` ORDER BY u.created_at, u.id LIMIT ` + conds.next(1) + ` OFFSET ` + conds.next(2)

	rows, err := s.pool.Query(ctx, query, append(conds.args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.NormalizedName,
		&user.Status,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.CreatedBy,
		&user.UpdatedBy,
		&user.OrganizationIDs,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
