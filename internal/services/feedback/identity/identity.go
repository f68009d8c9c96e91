// Package identity owns user accounts and credential verification.
package identity

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
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password.
	ErrInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "invalid email or password")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = storage.ErrDuplicateEmail
	// ErrNotFound indicates no user has the requested id.
	ErrNotFound = storage.ErrNotFound
)

// Store is the persistence the identity service needs.
type Store interface {
	storage.UserStore
	CountActiveSessions(ctx context.Context, userID int64, now time.Time) (int64, error)
	CountFeedbackByUser(ctx context.Context, userID int64) (int64, error)
}

// Profile summarizes a user with activity counts.
type Profile struct {
	User               user.User
	FeedbackCount      int64
	ActiveSessionCount int64
}

// Service registers and authenticates users.
type Service struct {
	store Store
	clock func() time.Time
}

// NewService builds a Service. A nil clock uses time.Now.
func NewService(store Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

// Register creates a user with a hashed password. The store's UNIQUE
// constraint decides between concurrent registrations of one email.
func (s *Service) Register(ctx context.Context, email, password string, role user.Role) (user.User, error) {
	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		return user.User{}, err
	}
	if err := user.ValidatePassword(password); err != nil {
		return user.User{}, err
	}
	if !role.Valid() {
		return user.User{}, user.ErrInvalidRole
	}
	hash, err := user.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}
	created, err := s.store.CreateUser(ctx, normalized, hash, role)
	if err != nil {
		return user.User{}, fmt.Errorf("register user: %w", err)
	}
	return created, nil
}

// Authenticate verifies credentials. Unknown emails run a throwaway bcrypt
// comparison so both failure paths take comparable time and return the
// same error value.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		user.BurnVerify(password)
		return user.User{}, ErrInvalidCredentials
	}
	found, err := s.store.GetUserByEmail(ctx, normalized)
	if errors.Is(err, storage.ErrNotFound) {
		user.BurnVerify(password)
		return user.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return user.User{}, fmt.Errorf("authenticate: %w", err)
	}
	if !user.VerifyPassword(found.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}
	return found, nil
}

// GetByID returns the user with id.
func (s *Service) GetByID(ctx context.Context, id int64) (user.User, error) {
	found, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return found, nil
}

// ChangePassword replaces the password and revokes every session of the
// user. Either both take effect or neither does.
func (s *Service) ChangePassword(ctx context.Context, id int64, password string) (user.User, error) {
	if err := user.ValidatePassword(password); err != nil {
		return user.User{}, err
	}
	hash, err := user.HashPassword(password)
	if err != nil {
		return user.User{}, err
	}
	updated, _, err := s.store.UpdateUserPasswordAndRevokeSessions(ctx, id, hash)
	if err != nil {
		return user.User{}, fmt.Errorf("change password: %w", err)
	}
	return updated, nil
}

// ChangeRole sets the role of a user.
func (s *Service) ChangeRole(ctx context.Context, id int64, role user.Role) (user.User, error) {
	if !role.Valid() {
		return user.User{}, user.ErrInvalidRole
	}
	updated, err := s.store.UpdateUserRole(ctx, id, role)
	if err != nil {
		return user.User{}, fmt.Errorf("change role: %w", err)
	}
	return updated, nil
}

// Profile returns the user with feedback and active session counts.
func (s *Service) Profile(ctx context.Context, id int64) (Profile, error) {
	found, err := s.store.GetUser(ctx, id)
	if err != nil {
		return Profile{}, fmt.Errorf("get user: %w", err)
	}
	feedbackCount, err := s.store.CountFeedbackByUser(ctx, id)
	if err != nil {
		return Profile{}, fmt.Errorf("count feedback: %w", err)
	}
	sessionCount, err := s.store.CountActiveSessions(ctx, id, s.clock())
	if err != nil {
		return Profile{}, fmt.Errorf("count sessions: %w", err)
	}
	return Profile{User: found, FeedbackCount: feedbackCount, ActiveSessionCount: sessionCount}, nil
}
