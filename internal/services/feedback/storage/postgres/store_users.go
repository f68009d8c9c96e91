package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

const userColumns = "id, email, password_hash, role, created_at"

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u         user.User
		role      string
		createdAt time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &createdAt); err != nil {
		return user.User{}, err
	}
	parsed, err := user.ParseRole(role)
	if err != nil {
		return user.User{}, fmt.Errorf("user %d has role %q: %w", u.ID, role, err)
	}
	u.Role = parsed
	u.CreatedAt = createdAt.UTC()
	return u, nil
}

// CreateUser inserts a user; the UNIQUE constraint on email decides races.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, role user.Role) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	if strings.TrimSpace(email) == "" {
		return user.User{}, fmt.Errorf("email is required")
	}
	if !role.Valid() {
		return user.User{}, user.ErrInvalidRole
	}
	u, err := scanUser(s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, role, created_at) VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		email, passwordHash, role.String(), s.now(),
	))
	if err != nil {
		return user.User{}, classify("create user", err, storage.ErrDuplicateEmail)
	}
	return u, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	u, err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return user.User{}, classify("get user", err, nil)
	}
	return u, nil
}

// GetUserByEmail returns a user by exact email match.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	u, err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		return user.User{}, classify("get user by email", err, nil)
	}
	return u, nil
}

// UpdateUserPasswordAndRevokeSessions replaces the stored password hash and
// revokes every unrevoked session of the user in one transaction.
func (s *Store) UpdateUserPasswordAndRevokeSessions(ctx context.Context, id int64, passwordHash string) (user.User, int64, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, 0, err
	}
	var (
		updated user.User
		revoked int64
	)
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx,
			"UPDATE users SET password_hash = $1 WHERE id = $2 RETURNING "+userColumns,
			passwordHash, id,
		))
		if err != nil {
			return classify("update user password", err, nil)
		}
		tag, err := tx.Exec(ctx,
			"UPDATE sessions SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL",
			s.now(), id,
		)
		if err != nil {
			return classify("revoke user sessions", err, nil)
		}
		updated = u
		revoked = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return user.User{}, 0, err
	}
	return updated, revoked, nil
}

// UpdateUserRole replaces the stored role.
func (s *Store) UpdateUserRole(ctx context.Context, id int64, role user.Role) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	if !role.Valid() {
		return user.User{}, user.ErrInvalidRole
	}
	u, err := scanUser(s.pool.QueryRow(ctx,
		"UPDATE users SET role = $1 WHERE id = $2 RETURNING "+userColumns,
		role.String(), id,
	))
	if err != nil {
		return user.User{}, classify("update user role", err, nil)
	}
	return u, nil
}
