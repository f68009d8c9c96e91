package feedbackfakes

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

// ErrInjected is the cause attached to injected storage failures.
var ErrInjected = errors.New("injected storage failure")

// FlakyStore wraps a real store and fails the next Failures read calls with
// a StorageFailure error before delegating.
type FlakyStore struct {
	storage.Store

	mu       sync.Mutex
	Failures int
	Calls    int
}

// NewFlakyStore wraps inner with no pending failures.
func NewFlakyStore(inner storage.Store) *FlakyStore {
	return &FlakyStore{Store: inner}
}

// FailNext makes the next n read calls fail.
func (s *FlakyStore) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures = n
}

func (s *FlakyStore) fail(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Failures > 0 {
		s.Failures--
		return apperrors.Storage(op, ErrInjected)
	}
	return nil
}

func (s *FlakyStore) GetUser(ctx context.Context, id int64) (user.User, error) {
	if err := s.fail("get user"); err != nil {
		return user.User{}, err
	}
	return s.Store.GetUser(ctx, id)
}

func (s *FlakyStore) GetSession(ctx context.Context, id int64) (storage.Session, error) {
	if err := s.fail("get session"); err != nil {
		return storage.Session{}, err
	}
	return s.Store.GetSession(ctx, id)
}

func (s *FlakyStore) ListEmojis(ctx context.Context) ([]storage.Emoji, error) {
	if err := s.fail("list emojis"); err != nil {
		return nil, err
	}
	return s.Store.ListEmojis(ctx)
}

func (s *FlakyStore) ListFeedbackByUser(ctx context.Context, userID int64) ([]storage.Feedback, error) {
	if err := s.fail("list user feedback"); err != nil {
		return nil, err
	}
	return s.Store.ListFeedbackByUser(ctx, userID)
}

func (s *FlakyStore) ListFeedbackHistory(ctx context.Context, userID int64) ([]storage.FeedbackView, error) {
	if err := s.fail("list feedback history"); err != nil {
		return nil, err
	}
	return s.Store.ListFeedbackHistory(ctx, userID)
}

func (s *FlakyStore) CountActiveSessions(ctx context.Context, userID int64, now time.Time) (int64, error) {
	if err := s.fail("count active sessions"); err != nil {
		return 0, err
	}
	return s.Store.CountActiveSessions(ctx, userID, now)
}
