package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
)

const sessionColumns = "id, user_id, created_at, expires_at, revoked_at"

func scanSession(row rowScanner) (storage.Session, error) {
	var (
		session   storage.Session
		createdAt int64
		expiresAt int64
		revokedAt sql.NullInt64
	)
	if err := row.Scan(&session.ID, &session.UserID, &createdAt, &expiresAt, &revokedAt); err != nil {
		return storage.Session{}, err
	}
	session.CreatedAt = fromMillis(createdAt)
	session.ExpiresAt = fromMillis(expiresAt)
	if revokedAt.Valid {
		value := fromMillis(revokedAt.Int64)
		session.RevokedAt = &value
	}
	return session, nil
}

// expiryMillis keeps expires_at strictly after created_at at millisecond
// precision for sub-millisecond ttls.
func expiryMillis(createdAt int64, ttl time.Duration) int64 {
	return createdAt + max(ttl.Milliseconds(), 1)
}

// CreateSession inserts a session for an existing user.
func (s *Store) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (storage.Session, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Session{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Session{}, classify("begin create session", err, nil)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := requireRow(ctx, tx, "SELECT 1 FROM users WHERE id = ?", userID, storage.ErrUserNotFound); err != nil {
		return storage.Session{}, err
	}

	createdAt := toMillis(s.now())
	session, err := scanSession(tx.QueryRowContext(ctx,
		`INSERT INTO sessions (user_id, created_at, expires_at) VALUES (?, ?, ?)
		 RETURNING `+sessionColumns,
		userID, createdAt, expiryMillis(createdAt, ttl),
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.Session{}, storage.ErrUserNotFound
		}
		return storage.Session{}, classify("create session", err, nil)
	}
	if err := tx.Commit(); err != nil {
		return storage.Session{}, classify("commit session", err, nil)
	}
	return session, nil
}

// GetSession returns a session by id regardless of expiry.
func (s *Store) GetSession(ctx context.Context, id int64) (storage.Session, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Session{}, err
	}
	session, err := scanSession(s.sqlDB.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
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
	err := s.sqlDB.QueryRowContext(ctx,
		"UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ? RETURNING id",
		toMillis(s.now()), id,
	).Scan(&found)
	return classify("revoke session", err, nil)
}

// RevokeUserSessions revokes every unrevoked session of userID.
func (s *Store) RevokeUserSessions(ctx context.Context, userID int64) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL",
		toMillis(s.now()), userID,
	)
	if err != nil {
		return 0, classify("revoke user sessions", err, nil)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, classify("revoke user sessions", err, nil)
	}
	return count, nil
}

// CountActiveSessions counts unrevoked sessions of userID that expire after now.
func (s *Store) CountActiveSessions(ctx context.Context, userID int64, now time.Time) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE user_id = ? AND revoked_at IS NULL AND expires_at > ?",
		userID, toMillis(now),
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
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?1 OR (revoked_at IS NOT NULL AND revoked_at < ?1)",
		toMillis(cutoff),
	)
	if err != nil {
		return 0, classify("delete sessions", err, nil)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, classify("delete sessions", err, nil)
	}
	return count, nil
}

// requireRow runs an existence query inside tx and returns missing when it
// yields no row.
func requireRow(ctx context.Context, tx *sql.Tx, query string, id int64, missing error) error {
	var found int
	err := tx.QueryRowContext(ctx, query, id).Scan(&found)
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return missing
	}
	return classify("check reference", err, nil)
}
