package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vietart/artmarket/internal/domain"
)

// UserStore implements domain.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ domain.UserStore = (*UserStore)(nil)

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.Role, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.ID = fromPGUUID(id)
	u.CreatedAt = fromPGTime(createdAt)
	u.UpdatedAt = fromPGTime(updatedAt)
	return &u, nil
}

// Create inserts a new user. A duplicate email maps to ErrEmailTaken.
func (s *UserStore) Create(ctx context.Context, params domain.CreateUserParams, passwordHash string) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		params.Email, passwordHash, params.FirstName, params.LastName, params.Phone, string(params.Role))

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.Internal(err, "user.create", "failed to create user")
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, pgUUID(id))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get", "failed to get user")
	}
	return user, nil
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get_by_email", "failed to get user")
	}
	return user, nil
}

// List returns users with pagination, newest first.
func (s *UserStore) List(ctx context.Context, page, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, "user.list", "failed to count users")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, domain.Internal(err, "user.list", "failed to list users")
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, domain.Internal(err, "user.list", "failed to scan user")
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Internal(err, "user.list", "failed to read users")
	}
	return users, total, nil
}

// SaveRefreshToken stores a refresh token for later verification. Expired
// tokens for the user are pruned opportunistically.
func (s *UserStore) SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM refresh_tokens WHERE user_id = $1 AND expires_at < now()`,
			pgUUID(userID)); err != nil {
			return domain.Internal(err, "user.save_refresh_token", "failed to prune refresh tokens")
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
			pgUUID(userID), token, pgtype.Timestamptz{Time: expiresAt, Valid: true}); err != nil {
			return domain.Internal(err, "user.save_refresh_token", "failed to save refresh token")
		}
		return nil
	})
}

// HasRefreshToken reports whether the token is stored and unexpired.
func (s *UserStore) HasRefreshToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE user_id = $1 AND token = $2 AND expires_at >= now()
		)`,
		pgUUID(userID), token).Scan(&exists)
	if err != nil {
		return false, domain.Internal(err, "user.has_refresh_token", "failed to check refresh token")
	}
	return exists, nil
}

// DeleteRefreshToken revokes a single refresh token.
func (s *UserStore) DeleteRefreshToken(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1 AND token = $2`,
		pgUUID(userID), token)
	if err != nil {
		return domain.Internal(err, "user.delete_refresh_token", "failed to delete refresh token")
	}
	return nil
}
