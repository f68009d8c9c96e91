package storage

import (
	"context"
	"time"

	"github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New(errors.CodeNotFound, "record not found")
	// ErrDuplicateEmail indicates the users.email UNIQUE constraint fired.
	ErrDuplicateEmail = errors.New(errors.CodeDuplicateEmail, "email already registered")
	// ErrDuplicateEmoji indicates the emojis.character UNIQUE constraint fired.
	ErrDuplicateEmoji = errors.New(errors.CodeDuplicateEmoji, "emoji already exists")
	// ErrUserNotFound indicates a referenced user does not exist.
	ErrUserNotFound = errors.New(errors.CodeUserNotFound, "user not found")
	// ErrEmojiNotFound indicates a referenced emoji does not exist.
	ErrEmojiNotFound = errors.New(errors.CodeEmojiNotFound, "emoji not found")
	// ErrFeedbackReviewed indicates a write that reviewed feedback forbids.
	ErrFeedbackReviewed = errors.New(errors.CodeFeedbackAlreadyReviewed, "feedback already reviewed")
	// ErrStorage matches any unclassified persistence failure.
	ErrStorage = errors.New(errors.CodeStorageFailure, "storage failure")
)

// Session is a time-bounded authentication grant for one user.
type Session struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// ActiveAt reports whether the session is usable at now.
func (s Session) ActiveAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Emoji is a sentiment tag from the catalog.
type Emoji struct {
	ID        int64
	Character string
	Meaning   string
}

// Feedback is one submitted entry in the ledger.
type Feedback struct {
	ID        int64
	Content   string
	UserID    int64
	EmojiID   int64
	Reviewed  bool
	CreatedAt time.Time
}

// FeedbackView joins a feedback entry with its author and emoji for listing.
type FeedbackView struct {
	Feedback
	UserEmail      string
	EmojiCharacter string
	EmojiMeaning   string
}

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user and returns it with ID and CreatedAt set.
	// Returns ErrDuplicateEmail when the email is taken.
	CreateUser(ctx context.Context, email, passwordHash string, role user.Role) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	// UpdateUserPasswordAndRevokeSessions replaces the password hash and
	// revokes the user's sessions atomically, returning the revoked count.
	UpdateUserPasswordAndRevokeSessions(ctx context.Context, id int64, passwordHash string) (user.User, int64, error)
	UpdateUserRole(ctx context.Context, id int64, role user.Role) (user.User, error)
}

// SessionStore persists sessions.
type SessionStore interface {
	// CreateSession stamps CreatedAt with the store clock and ExpiresAt as
	// CreatedAt+ttl. Returns ErrUserNotFound for an unknown user.
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (Session, error)
	GetSession(ctx context.Context, id int64) (Session, error)
	// RevokeSession sets RevokedAt when unset. Returns ErrNotFound for an
	// unknown id.
	RevokeSession(ctx context.Context, id int64) error
	RevokeUserSessions(ctx context.Context, userID int64) (int64, error)
	CountActiveSessions(ctx context.Context, userID int64, now time.Time) (int64, error)
	// DeleteSessionsBefore removes sessions that expired or were revoked
	// before cutoff.
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EmojiStore persists the emoji catalog.
type EmojiStore interface {
	// CreateEmoji returns ErrDuplicateEmoji when the character exists.
	CreateEmoji(ctx context.Context, character, meaning string) (Emoji, error)
	GetEmoji(ctx context.Context, id int64) (Emoji, error)
	GetEmojiByCharacter(ctx context.Context, character string) (Emoji, error)
	ListEmojis(ctx context.Context) ([]Emoji, error)
}

// FeedbackStore persists the feedback ledger.
type FeedbackStore interface {
	// CreateFeedback checks both references inside the insert transaction
	// and returns ErrUserNotFound or ErrEmojiNotFound.
	CreateFeedback(ctx context.Context, userID, emojiID int64, content string) (Feedback, error)
	GetFeedback(ctx context.Context, id int64) (Feedback, error)
	// MarkFeedbackReviewed sets reviewed; already reviewed rows are returned unchanged.
	MarkFeedbackReviewed(ctx context.Context, id int64) (Feedback, error)
	ListUnreviewedFeedback(ctx context.Context) ([]Feedback, error)
	ListFeedbackByUser(ctx context.Context, userID int64) ([]Feedback, error)
	// ListFeedbackPage returns up to limit entries newest first with IDs
	// below beforeID; beforeID <= 0 starts at the newest entry.
	ListFeedbackPage(ctx context.Context, limit int, beforeID int64) ([]FeedbackView, error)
	// ListFeedbackHistory returns every entry of userID joined with its
	// emoji, newest first.
	ListFeedbackHistory(ctx context.Context, userID int64) ([]FeedbackView, error)
	CountFeedbackByUser(ctx context.Context, userID int64) (int64, error)
	// DeleteFeedback removes an unreviewed entry. Returns ErrNotFound or
	// ErrFeedbackReviewed.
	DeleteFeedback(ctx context.Context, id int64) error
}

// Store is the full persistence boundary implemented by each backend.
type Store interface {
	UserStore
	SessionStore
	EmojiStore
	FeedbackStore
	Ping(ctx context.Context) error
	Close() error
}
