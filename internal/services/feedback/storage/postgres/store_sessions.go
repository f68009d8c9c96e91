package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
)

const sessionColumns = "id, user_id, created_at, expires_at, revoked_at"

func scanSession(row pgx.Row) (storage.Session, error) {
	var (
		session   storage.Session
		createdAt time.Time
		expiresAt time.Time
		revokedAt *time.Time
	)
	if err := row.Scan(&session.ID, &session.UserID, &createdAt, &expiresAt, &revokedAt); err != nil {
		return storage.Session{}, err
	}
	session.CreatedAt = createdAt.UTC()
	session.ExpiresAt = expiresAt.UTC()
	if revokedAt != nil {
		value := revokedAt.UTC()
		session.RevokedAt = &value
	}
	return session, nil
}

// CreateSession inserts a session for an existing user. The user row is
// locked FOR KEY SHARE so it cannot disappear before the insert commits.
func (s *Store) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (storage.Session, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Session{}, err
	}
	createdAt := s.now()
	expiresAt := createdAt.Add(max(ttl.Truncate(time.Microsecond), time.Microsecond))

	var session storage.Session
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireRow(ctx, tx, "SELECT 1 FROM users WHERE id = $1 FOR KEY SHARE", userID, storage.ErrUserNotFound); err != nil {
			return err
		}
		created, err := scanSession(tx.QueryRow(ctx,
			`INSERT INTO sessions (user_id, created_at, expires_at) VALUES ($1, $2, $3)
			 RETURNING `+sessionColumns,
			userID, createdAt, expiresAt,
		))
		if err != nil {
			if pgErrorCode(err) == pgForeignKeyViolation {
				return storage.ErrUserNotFound
			}
			return classify("create session", err, nil)
		}
		session = created
		return nil
	})
	if err != nil {
		return storage.Session{}, err
	}
	return session, nil
}

// GetSession returns a session by id regardless of expiry.
func (s *Store) GetSession(ctx context.Context, id int64) (storage.Session, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Session{}, err
	}
	session, err := scanSession(s.pool.QueryRow(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = $1", id))
	if err != nil {
		return storage.Session{}, classify("get session", err, nil)
	}
	return session, nil
}

// RevokeSession stamps revoked_at once; later calls keep the first stamp.
func (s *Store) RevokeSession(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	var found int64
	err := s.pool.QueryRow(ctx,
		"UPDATE sessions SET revoked_at = COALESCE(revoked_at, $1) WHERE id = $2 RETURNING id",
		s.now(), id,
	).Scan(&found)
	return classify("revoke session", err, nil)
}

// RevokeUserSessions revokes every unrevoked session of userID.
func (s *Store) RevokeUserSessions(ctx context.Context, userID int64) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE sessions SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL",
		s.now(), userID,
	)
	if err != nil {
		return 0, classify("revoke user sessions", err, nil)
	}
	return tag.RowsAffected(), nil
}

// CountActiveSessions counts unrevoked sessions of userID that expire after now.
func (s *Store) CountActiveSessions(ctx context.Context, userID int64, now time.Time) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int64
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2",
		userID, now.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, classify("count active sessions", err, nil)
	}
	return count, nil
}

// DeleteSessionsBefore purges sessions that expired or were revoked before cutoff.
func (s *Store) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM sessions WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)",
		cutoff.UTC(),
	)
	if err != nil {
		return 0, classify("delete sessions", err, nil)
	}
	return tag.RowsAffected(), nil
}

// requireRow runs an existence query inside tx and returns missing when it
// yields no row.
func requireRow(ctx context.Context, tx pgx.Tx, query string, id int64, missing error) error {
	var found int
	err := tx.QueryRow(ctx, query, id).Scan(&found)
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return missing
	}
	return classify("check reference", err, nil)
}
