package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

const userColumns = "id, email, password_hash, role, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u         user.User
		role      string
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &createdAt); err != nil {
		return user.User{}, err
	}
	parsed, err := user.ParseRole(role)
	if err != nil {
		return user.User{}, fmt.Errorf("user %d has role %q: %w", u.ID, role, err)
	}
	u.Role = parsed
	u.CreatedAt = fromMillis(createdAt)
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

	row := s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, role, created_at) VALUES (?, ?, ?, ?)
		 RETURNING `+userColumns,
		email, passwordHash, role.String(), toMillis(s.now()),
	)
	u, err := scanUser(row)
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
	u, err := scanUser(s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
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
	u, err := scanUser(s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
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

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return user.User{}, 0, classify("begin update user password", err, nil)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	u, err := scanUser(tx.QueryRowContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ? RETURNING "+userColumns,
		passwordHash, id,
	))
	if err != nil {
		return user.User{}, 0, classify("update user password", err, nil)
	}
	result, err := tx.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL",
		toMillis(s.now()), id,
	)
	if err != nil {
		return user.User{}, 0, classify("revoke user sessions", err, nil)
	}
	revoked, err := result.RowsAffected()
	if err != nil {
		return user.User{}, 0, classify("revoke user sessions", err, nil)
	}
	if err := tx.Commit(); err != nil {
		return user.User{}, 0, classify("commit user password", err, nil)
	}
	return u, revoked, nil
}

// UpdateUserRole replaces the stored role.
func (s *Store) UpdateUserRole(ctx context.Context, id int64, role user.Role) (user.User, error) {
	if err := s.ready(ctx); err != nil {
		return user.User{}, err
	}
	if !role.Valid() {
		return user.User{}, user.ErrInvalidRole
	}
	row := s.sqlDB.QueryRowContext(ctx,
		"UPDATE users SET role = ? WHERE id = ? RETURNING "+userColumns,
		role.String(), id,
	)
	u, err := scanUser(row)
	if err != nil {
		return user.User{}, classify("update user role", err, nil)
	}
	return u, nil
}
