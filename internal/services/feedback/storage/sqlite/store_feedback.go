package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
)

const feedbackColumns = "id, content, user_id, emoji_id, reviewed, created_at"

func scanFeedback(row rowScanner) (storage.Feedback, error) {
	var (
		entry     storage.Feedback
		reviewed  int64
		createdAt int64
	)
	if err := row.Scan(&entry.ID, &entry.Content, &entry.UserID, &entry.EmojiID, &reviewed, &createdAt); err != nil {
		return storage.Feedback{}, err
	}
	entry.Reviewed = reviewed != 0
	entry.CreatedAt = fromMillis(createdAt)
	return entry, nil
}

// CreateFeedback inserts an entry after checking both references inside
// one immediate transaction.
func (s *Store) CreateFeedback(ctx context.Context, userID, emojiID int64, content string) (storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Feedback{}, err
	}
	if strings.TrimSpace(content) == "" {
		return storage.Feedback{}, fmt.Errorf("content is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Feedback{}, classify("begin create feedback", err, nil)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := requireRow(ctx, tx, "SELECT 1 FROM users WHERE id = ?", userID, storage.ErrUserNotFound); err != nil {
		return storage.Feedback{}, err
	}
	if err := requireRow(ctx, tx, "SELECT 1 FROM emojis WHERE id = ?", emojiID, storage.ErrEmojiNotFound); err != nil {
		return storage.Feedback{}, err
	}

	entry, err := scanFeedback(tx.QueryRowContext(ctx,
		`INSERT INTO feedback (content, user_id, emoji_id, reviewed, created_at) VALUES (?, ?, ?, 0, ?)
		 RETURNING `+feedbackColumns,
		content, userID, emojiID, toMillis(s.now()),
	))
	if err != nil {
		return storage.Feedback{}, classify("create feedback", err, nil)
	}
	if err := tx.Commit(); err != nil {
		return storage.Feedback{}, classify("commit feedback", err, nil)
	}
	return entry, nil
}

// GetFeedback returns an entry by id.
func (s *Store) GetFeedback(ctx context.Context, id int64) (storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Feedback{}, err
	}
	entry, err := scanFeedback(s.sqlDB.QueryRowContext(ctx, "SELECT "+feedbackColumns+" FROM feedback WHERE id = ?", id))
	if err != nil {
		return storage.Feedback{}, classify("get feedback", err, nil)
	}
	return entry, nil
}

// MarkFeedbackReviewed sets reviewed; the flag never reverts.
func (s *Store) MarkFeedbackReviewed(ctx context.Context, id int64) (storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Feedback{}, err
	}
	entry, err := scanFeedback(s.sqlDB.QueryRowContext(ctx,
		"UPDATE feedback SET reviewed = 1 WHERE id = ? RETURNING "+feedbackColumns,
		id,
	))
	if err != nil {
		return storage.Feedback{}, classify("mark feedback reviewed", err, nil)
	}
	return entry, nil
}

// ListUnreviewedFeedback returns unreviewed entries in creation order.
func (s *Store) ListUnreviewedFeedback(ctx context.Context) ([]storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryFeedback(ctx, "list unreviewed feedback",
		"SELECT "+feedbackColumns+" FROM feedback WHERE reviewed = 0 ORDER BY id")
}

// ListFeedbackByUser returns a user's entries in creation order.
func (s *Store) ListFeedbackByUser(ctx context.Context, userID int64) ([]storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryFeedback(ctx, "list user feedback",
		"SELECT "+feedbackColumns+" FROM feedback WHERE user_id = ? ORDER BY id", userID)
}

func (s *Store) queryFeedback(ctx context.Context, op, query string, args ...any) ([]storage.Feedback, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err, nil)
	}
	defer rows.Close()

	entries := make([]storage.Feedback, 0)
	for rows.Next() {
		entry, err := scanFeedback(rows)
		if err != nil {
			return nil, classify(op, err, nil)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err, nil)
	}
	return entries, nil
}

const feedbackViewQuery = `
SELECT f.id, f.content, f.user_id, f.emoji_id, f.reviewed, f.created_at,
       u.email, e."character", e.meaning
FROM feedback f
JOIN users u ON u.id = f.user_id
JOIN emojis e ON e.id = f.emoji_id`

// ListFeedbackPage returns entries joined with author and emoji, newest first.
func (s *Store) ListFeedbackPage(ctx context.Context, limit int, beforeID int64) ([]storage.FeedbackView, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	rows, err := s.sqlDB.QueryContext(ctx, feedbackViewQuery+`
WHERE (?1 <= 0 OR f.id < ?1)
ORDER BY f.id DESC
LIMIT ?2`, beforeID, limit)
	if err != nil {
		return nil, classify("list feedback page", err, nil)
	}
	return scanFeedbackViews(rows, "feedback page")
}

// ListFeedbackHistory returns a user's entries joined with their emoji,
// newest first.
func (s *Store) ListFeedbackHistory(ctx context.Context, userID int64) ([]storage.FeedbackView, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, feedbackViewQuery+`
WHERE f.user_id = ?
ORDER BY f.id DESC`, userID)
	if err != nil {
		return nil, classify("list feedback history", err, nil)
	}
	return scanFeedbackViews(rows, "feedback history")
}

func scanFeedbackViews(rows *sql.Rows, what string) ([]storage.FeedbackView, error) {
	defer rows.Close()

	views := make([]storage.FeedbackView, 0)
	for rows.Next() {
		var (
			view      storage.FeedbackView
			reviewed  int64
			createdAt int64
		)
		if err := rows.Scan(
			&view.ID, &view.Content, &view.UserID, &view.EmojiID, &reviewed, &createdAt,
			&view.UserEmail, &view.EmojiCharacter, &view.EmojiMeaning,
		); err != nil {
			return nil, classify("scan "+what, err, nil)
		}
		view.Reviewed = reviewed != 0
		view.CreatedAt = fromMillis(createdAt)
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate "+what, err, nil)
	}
	return views, nil
}

// CountFeedbackByUser counts a user's entries.
func (s *Store) CountFeedbackByUser(ctx context.Context, userID int64) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int64
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, classify("count feedback", err, nil)
	}
	return count, nil
}

// DeleteFeedback removes an unreviewed entry.
func (s *Store) DeleteFeedback(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin delete feedback", err, nil)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var reviewed int64
	err = tx.QueryRowContext(ctx, "SELECT reviewed FROM feedback WHERE id = ?", id).Scan(&reviewed)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return classify("get feedback", err, nil)
	}
	if reviewed != 0 {
		return storage.ErrFeedbackReviewed
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM feedback WHERE id = ?", id); err != nil {
		return classify("delete feedback", err, nil)
	}
	if err := tx.Commit(); err != nil {
		return classify("commit delete feedback", err, nil)
	}
	return nil
}
