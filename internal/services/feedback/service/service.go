// Package service is the feedback desk: the session-authenticated entry
// point that combines identity, sessions, the emoji catalog and the ledger
// under the role policy.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/catalog"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/guard"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/identity"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/ledger"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/session"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/token"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

// ErrUnauthorized is returned when the caller's role may not run an operation.
var ErrUnauthorized = apperrors.New(apperrors.CodeUnauthorized, "operation not permitted")

// DefaultSessionTTL is used when Config.SessionTTL is unset.
const DefaultSessionTTL = 24 * time.Hour

// Config tunes login sessions and tokens.
type Config struct {
	SessionTTL time.Duration
	// TokenSecret enables bearer tokens at login when set.
	TokenSecret string
	TokenIssuer string
}

// Login is the result of a successful sign in.
type Login struct {
	User    user.User
	Session storage.Session
	// Token is empty when no token secret is configured.
	Token string
}

// Service runs desk operations against one store.
type Service struct {
	identity *identity.Service
	sessions *session.Manager
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	cfg      Config
	clock    func() time.Time
}

// New wires the desk components over store. A nil clock uses time.Now.
func New(store storage.Store, cfg Config, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	users := identity.NewService(store, clock)
	return &Service{
		identity: users,
		sessions: session.NewManager(store, users, clock),
		catalog:  catalog.New(store),
		ledger:   ledger.New(store),
		cfg:      cfg,
		clock:    clock,
	}
}

// Identity exposes the identity component for administration.
func (s *Service) Identity() *identity.Service { return s.identity }

// Sessions exposes the session manager for maintenance.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// Catalog exposes the emoji catalog for seeding.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Register signs up a new account. Self-service accounts are always USER.
func (s *Service) Register(ctx context.Context, email, password string) (user.User, error) {
	return s.identity.Register(ctx, email, password, user.RoleUser)
}

// Login authenticates and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (Login, error) {
	u, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		return Login{}, err
	}
	created, err := s.sessions.CreateSession(ctx, u.ID, s.cfg.SessionTTL)
	if err != nil {
		return Login{}, err
	}
	result := Login{User: u, Session: created}
	if s.cfg.TokenSecret != "" {
		claims := token.Claims{SessionID: created.ID, UserID: u.ID, Role: u.Role}
		signed, err := token.Issue(s.cfg.TokenSecret, s.cfg.TokenIssuer, claims, created.CreatedAt, created.ExpiresAt)
		if err != nil {
			return Login{}, fmt.Errorf("issue token: %w", err)
		}
		result.Token = signed
	}
	return result, nil
}

// Logout revokes sessionID.
func (s *Service) Logout(ctx context.Context, sessionID int64) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// Resolve maps a bearer token to the session it names. Any token failure
// surfaces as SESSION_NOT_FOUND.
func (s *Service) Resolve(ctx context.Context, bearer string) (int64, error) {
	claims, err := token.ParseAt(s.cfg.TokenSecret, bearer, s.clock())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeSessionNotFound, "session not found", err)
	}
	owner, err := s.validate(ctx, claims.SessionID)
	if err != nil {
		return 0, err
	}
	if owner.ID != claims.UserID {
		return 0, session.ErrSessionNotFound
	}
	return claims.SessionID, nil
}

func (s *Service) validate(ctx context.Context, sessionID int64) (user.User, error) {
	return storage.RetryOnce(ctx, func(ctx context.Context) (user.User, error) {
		return s.sessions.ValidateSession(ctx, sessionID)
	})
}

// authorize resolves the caller and applies the role policy.
func (s *Service) authorize(ctx context.Context, sessionID int64, op guard.Operation) (user.User, error) {
	caller, err := s.validate(ctx, sessionID)
	if err != nil {
		return user.User{}, err
	}
	if !guard.Allow(caller.Role, op) {
		return user.User{}, apperrors.WithMetadata(apperrors.CodeUnauthorized,
			fmt.Sprintf("%s may not %s", caller.Role, op),
			map[string]string{"Role": caller.Role.String(), "Operation": string(op)})
	}
	return caller, nil
}

// SubmitFeedback records feedback authored by the caller.
func (s *Service) SubmitFeedback(ctx context.Context, sessionID, emojiID int64, content string) (storage.Feedback, error) {
	caller, err := s.authorize(ctx, sessionID, guard.SubmitFeedback)
	if err != nil {
		return storage.Feedback{}, err
	}
	return s.ledger.Submit(ctx, caller.ID, emojiID, content)
}

// ListMyFeedback returns the caller's feedback in creation order.
func (s *Service) ListMyFeedback(ctx context.Context, sessionID int64) ([]storage.Feedback, error) {
	caller, err := s.authorize(ctx, sessionID, guard.ListOwnFeedback)
	if err != nil {
		return nil, err
	}
	return storage.RetryOnce(ctx, func(ctx context.Context) ([]storage.Feedback, error) {
		return s.ledger.ListByUser(ctx, caller.ID)
	})
}

// ListMyHistory returns the caller's feedback with emoji details, newest first.
func (s *Service) ListMyHistory(ctx context.Context, sessionID int64) ([]storage.FeedbackView, error) {
	caller, err := s.authorize(ctx, sessionID, guard.ListOwnFeedback)
	if err != nil {
		return nil, err
	}
	return storage.RetryOnce(ctx, func(ctx context.Context) ([]storage.FeedbackView, error) {
		return s.ledger.History(ctx, caller.ID)
	})
}

// ListUnreviewed returns every unreviewed entry in creation order.
func (s *Service) ListUnreviewed(ctx context.Context, sessionID int64) ([]storage.Feedback, error) {
	if _, err := s.authorize(ctx, sessionID, guard.ListUnreviewed); err != nil {
		return nil, err
	}
	return storage.RetryOnce(ctx, s.ledger.ListUnreviewed)
}

// MarkReviewed flags feedbackID as reviewed.
func (s *Service) MarkReviewed(ctx context.Context, sessionID, feedbackID int64) (storage.Feedback, error) {
	if _, err := s.authorize(ctx, sessionID, guard.MarkReviewed); err != nil {
		return storage.Feedback{}, err
	}
	return s.ledger.MarkReviewed(ctx, feedbackID)
}

// ListEmojis returns the catalog.
func (s *Service) ListEmojis(ctx context.Context, sessionID int64) ([]storage.Emoji, error) {
	if _, err := s.authorize(ctx, sessionID, guard.ListEmojis); err != nil {
		return nil, err
	}
	return storage.RetryOnce(ctx, s.catalog.List)
}

// LookupEmoji returns the catalog entry for character.
func (s *Service) LookupEmoji(ctx context.Context, sessionID int64, character string) (storage.Emoji, error) {
	if _, err := s.authorize(ctx, sessionID, guard.LookupEmoji); err != nil {
		return storage.Emoji{}, err
	}
	return storage.RetryOnce(ctx, func(ctx context.Context) (storage.Emoji, error) {
		return s.catalog.GetByCharacter(ctx, character)
	})
}

// ListFeedback returns a newest-first page of all feedback.
func (s *Service) ListFeedback(ctx context.Context, sessionID int64, pageSize int, pageToken string) (ledger.Page, error) {
	if _, err := s.authorize(ctx, sessionID, guard.ListAllFeedback); err != nil {
		return ledger.Page{}, err
	}
	return storage.RetryOnce(ctx, func(ctx context.Context) (ledger.Page, error) {
		return s.ledger.List(ctx, pageSize, pageToken)
	})
}

// DeleteFeedback removes an unreviewed entry.
func (s *Service) DeleteFeedback(ctx context.Context, sessionID, feedbackID int64) error {
	if _, err := s.authorize(ctx, sessionID, guard.DeleteFeedback); err != nil {
		return err
	}
	return s.ledger.Delete(ctx, feedbackID)
}

// MyProfile returns the caller's profile.
func (s *Service) MyProfile(ctx context.Context, sessionID int64) (identity.Profile, error) {
	caller, err := s.authorize(ctx, sessionID, guard.ViewOwnProfile)
	if err != nil {
		return identity.Profile{}, err
	}
	return storage.RetryOnce(ctx, func(ctx context.Context) (identity.Profile, error) {
		return s.identity.Profile(ctx, caller.ID)
	})
}

// UserProfile returns any user's profile.
func (s *Service) UserProfile(ctx context.Context, sessionID, userID int64) (identity.Profile, error) {
	if _, err := s.authorize(ctx, sessionID, guard.ViewAnyProfile); err != nil {
		return identity.Profile{}, err
	}
	profile, err := storage.RetryOnce(ctx, func(ctx context.Context) (identity.Profile, error) {
		return s.identity.Profile(ctx, userID)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return identity.Profile{}, apperrors.Wrap(apperrors.CodeUserNotFound, "user not found", err)
	}
	return profile, err
}

// ChangeMyPassword replaces the caller's password. Every session of the
// caller, including sessionID, is revoked.
func (s *Service) ChangeMyPassword(ctx context.Context, sessionID int64, password string) error {
	caller, err := s.authorize(ctx, sessionID, guard.ChangeOwnPassword)
	if err != nil {
		return err
	}
	_, err = s.identity.ChangePassword(ctx, caller.ID, password)
	return err
}

// ChangeRole sets the role of userID.
func (s *Service) ChangeRole(ctx context.Context, sessionID, userID int64, role user.Role) (user.User, error) {
	if _, err := s.authorize(ctx, sessionID, guard.ChangeRole); err != nil {
		return user.User{}, err
	}
	updated, err := s.identity.ChangeRole(ctx, userID, role)
	if errors.Is(err, storage.ErrNotFound) {
		return user.User{}, apperrors.Wrap(apperrors.CodeUserNotFound, "user not found", err)
	}
	return updated, err
}
