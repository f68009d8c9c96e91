// Package ledger records feedback entries and their review state.
//
// Entries are immutable apart from the reviewed flag, which only moves from
// false to true. Unreviewed entries may be deleted; reviewed ones may not.
package ledger

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/platform/pagination"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
)

var (
	// ErrEmptyContent indicates feedback text that is blank after trimming.
	ErrEmptyContent = apperrors.New(apperrors.CodeEmptyContent, "feedback content is empty")
	// ErrInvalidPageToken indicates a page token this ledger did not issue.
	ErrInvalidPageToken = apperrors.New(apperrors.CodeInvalidPageToken, "invalid page token")
)

// PageSize bounds List page sizes.
var PageSize = pagination.PageSizeConfig{Default: 20, Max: 100}

// Page is one slice of the newest-first feedback listing.
type Page struct {
	Entries []storage.FeedbackView
	// NextPageToken is empty on the last page.
	NextPageToken string
}

// Ledger submits, reviews and lists feedback.
type Ledger struct {
	store storage.FeedbackStore
}

// New builds a Ledger over store.
func New(store storage.FeedbackStore) *Ledger {
	return &Ledger{store: store}
}

// Submit records feedback from userID tagged with emojiID. Content is
// checked before any lookup; the store verifies both references in the
// insert transaction.
func (l *Ledger) Submit(ctx context.Context, userID, emojiID int64, content string) (storage.Feedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return storage.Feedback{}, ErrEmptyContent
	}
	created, err := l.store.CreateFeedback(ctx, userID, emojiID, content)
	if err != nil {
		return storage.Feedback{}, fmt.Errorf("submit feedback: %w", err)
	}
	return created, nil
}

// MarkReviewed flags an entry as reviewed. Reviewing twice is harmless.
func (l *Ledger) MarkReviewed(ctx context.Context, feedbackID int64) (storage.Feedback, error) {
	reviewed, err := l.store.MarkFeedbackReviewed(ctx, feedbackID)
	if err != nil {
		return storage.Feedback{}, fmt.Errorf("mark reviewed: %w", err)
	}
	return reviewed, nil
}

// ListUnreviewed returns unreviewed entries in creation order.
func (l *Ledger) ListUnreviewed(ctx context.Context) ([]storage.Feedback, error) {
	entries, err := l.store.ListUnreviewedFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unreviewed: %w", err)
	}
	return entries, nil
}

// ListByUser returns the entries of userID in creation order.
func (l *Ledger) ListByUser(ctx context.Context, userID int64) ([]storage.Feedback, error) {
	entries, err := l.store.ListFeedbackByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user feedback: %w", err)
	}
	return entries, nil
}

// History returns the entries of userID with their emoji, newest first.
func (l *Ledger) History(ctx context.Context, userID int64) ([]storage.FeedbackView, error) {
	entries, err := l.store.ListFeedbackHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback history: %w", err)
	}
	return entries, nil
}

// List returns a newest-first page of every entry with author and emoji.
func (l *Ledger) List(ctx context.Context, pageSize int, pageToken string) (Page, error) {
	beforeID, err := pagination.DecodeCursor(pageToken)
	if err != nil {
		return Page{}, apperrors.Wrap(apperrors.CodeInvalidPageToken, "invalid page token", err)
	}
	size := pagination.ClampPageSize(pageSize, PageSize)

	entries, err := l.store.ListFeedbackPage(ctx, size+1, beforeID)
	if err != nil {
		return Page{}, fmt.Errorf("list feedback: %w", err)
	}
	page := Page{Entries: entries}
	if len(entries) > size {
		page.Entries = entries[:size]
		page.NextPageToken = pagination.EncodeCursor(page.Entries[size-1].ID)
	}
	return page, nil
}

// Delete removes an unreviewed entry.
func (l *Ledger) Delete(ctx context.Context, feedbackID int64) error {
	if err := l.store.DeleteFeedback(ctx, feedbackID); err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	return nil
}
