// Package session manages time-bounded authentication grants.
//
// A session moves one way: active until it expires or is revoked. Validation
// compares expiry against the manager clock on every call and never deletes;
// removal of old rows belongs to the maintenance purge.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

var (
	// ErrInvalidTTL indicates a non-positive session lifetime.
	ErrInvalidTTL = apperrors.New(apperrors.CodeInvalidTTL, "session ttl must be positive")
	// ErrSessionNotFound indicates no session has the requested id.
	ErrSessionNotFound = apperrors.New(apperrors.CodeSessionNotFound, "session not found")
	// ErrSessionExpired indicates the session expired or was revoked.
	ErrSessionExpired = apperrors.New(apperrors.CodeSessionExpired, "session expired")
)

// Users resolves the owner of a session.
type Users interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// Manager creates and validates sessions.
type Manager struct {
	store storage.SessionStore
	users Users
	clock func() time.Time
}

// NewManager builds a Manager. A nil clock uses time.Now.
func NewManager(store storage.SessionStore, users Users, clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{store: store, users: users, clock: clock}
}

// CreateSession opens a session for userID lasting ttl.
func (m *Manager) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (storage.Session, error) {
	if ttl <= 0 {
		return storage.Session{}, ErrInvalidTTL
	}
	created, err := m.store.CreateSession(ctx, userID, ttl)
	if err != nil {
		return storage.Session{}, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

// ValidateSession returns the owner of an active session.
func (m *Manager) ValidateSession(ctx context.Context, sessionID int64) (user.User, error) {
	found, err := m.store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, ErrSessionNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get session: %w", err)
	}
	if !found.ActiveAt(m.clock()) {
		return user.User{}, ErrSessionExpired
	}
	owner, err := m.users.GetByID(ctx, found.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, ErrSessionNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("resolve session owner: %w", err)
	}
	return owner, nil
}

// Revoke ends a session. Revoking an unknown or already revoked session is
// a no-op.
func (m *Manager) Revoke(ctx context.Context, sessionID int64) error {
	err := m.store.RevokeSession(ctx, sessionID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll ends every active session of userID and returns how many changed.
func (m *Manager) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	count, err := m.store.RevokeUserSessions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	return count, nil
}

// PurgeExpired deletes sessions that ended more than olderThan ago.
func (m *Manager) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		olderThan = 0
	}
	count, err := m.store.DeleteSessionsBefore(ctx, m.clock().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return count, nil
}
