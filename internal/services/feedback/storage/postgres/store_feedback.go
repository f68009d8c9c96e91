package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
)

const feedbackColumns = "id, content, user_id, emoji_id, reviewed, created_at"

func scanFeedback(row pgx.Row) (storage.Feedback, error) {
	var (
		entry     storage.Feedback
		createdAt time.Time
	)
	if err := row.Scan(&entry.ID, &entry.Content, &entry.UserID, &entry.EmojiID, &entry.Reviewed, &createdAt); err != nil {
		return storage.Feedback{}, err
	}
	entry.CreatedAt = createdAt.UTC()
	return entry, nil
}

// CreateFeedback inserts an entry after locking both referenced rows FOR
// KEY SHARE inside one transaction.
func (s *Store) CreateFeedback(ctx context.Context, userID, emojiID int64, content string) (storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Feedback{}, err
	}
	if strings.TrimSpace(content) == "" {
		return storage.Feedback{}, fmt.Errorf("content is required")
	}

	var entry storage.Feedback
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := requireRow(ctx, tx, "SELECT 1 FROM users WHERE id = $1 FOR KEY SHARE", userID, storage.ErrUserNotFound); err != nil {
			return err
		}
		if err := requireRow(ctx, tx, "SELECT 1 FROM emojis WHERE id = $1 FOR KEY SHARE", emojiID, storage.ErrEmojiNotFound); err != nil {
			return err
		}
		created, err := scanFeedback(tx.QueryRow(ctx,
			`INSERT INTO feedback (content, user_id, emoji_id, reviewed, created_at) VALUES ($1, $2, $3, false, $4)
			 RETURNING `+feedbackColumns,
			content, userID, emojiID, s.now(),
		))
		if err != nil {
			return classify("create feedback", err, nil)
		}
		entry = created
		return nil
	})
	if err != nil {
		return storage.Feedback{}, err
	}
	return entry, nil
}

// GetFeedback returns an entry by id.
func (s *Store) GetFeedback(ctx context.Context, id int64) (storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Feedback{}, err
	}
	entry, err := scanFeedback(s.pool.QueryRow(ctx, "SELECT "+feedbackColumns+" FROM feedback WHERE id = $1", id))
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
	entry, err := scanFeedback(s.pool.QueryRow(ctx,
		"UPDATE feedback SET reviewed = true WHERE id = $1 RETURNING "+feedbackColumns,
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
		"SELECT "+feedbackColumns+" FROM feedback WHERE NOT reviewed ORDER BY id")
}

// ListFeedbackByUser returns a user's entries in creation order.
func (s *Store) ListFeedbackByUser(ctx context.Context, userID int64) ([]storage.Feedback, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.queryFeedback(ctx, "list user feedback",
		"SELECT "+feedbackColumns+" FROM feedback WHERE user_id = $1 ORDER BY id", userID)
}

func (s *Store) queryFeedback(ctx context.Context, op, query string, args ...any) ([]storage.Feedback, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err, nil)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Feedback, error) {
		return scanFeedback(row)
	})
	if err != nil {
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
	rows, err := s.pool.Query(ctx, feedbackViewQuery+`
WHERE ($1::BIGINT <= 0 OR f.id < $1)
ORDER BY f.id DESC
LIMIT $2`, beforeID, limit)
	if err != nil {
		return nil, classify("list feedback page", err, nil)
	}
	views, err := pgx.CollectRows(rows, scanFeedbackView)
	if err != nil {
		return nil, classify("list feedback page", err, nil)
	}
	return views, nil
}

// ListFeedbackHistory returns a user's entries joined with their emoji,
// newest first.
func (s *Store) ListFeedbackHistory(ctx context.Context, userID int64) ([]storage.FeedbackView, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, feedbackViewQuery+`
WHERE f.user_id = $1
ORDER BY f.id DESC`, userID)
	if err != nil {
		return nil, classify("list feedback history", err, nil)
	}
	views, err := pgx.CollectRows(rows, scanFeedbackView)
	if err != nil {
		return nil, classify("list feedback history", err, nil)
	}
	return views, nil
}

func scanFeedbackView(row pgx.CollectableRow) (storage.FeedbackView, error) {
	var (
		view      storage.FeedbackView
		createdAt time.Time
	)
	err := row.Scan(
		&view.ID, &view.Content, &view.UserID, &view.EmojiID, &view.Reviewed, &createdAt,
		&view.UserEmail, &view.EmojiCharacter, &view.EmojiMeaning,
	)
	view.CreatedAt = createdAt.UTC()
	return view, err
}

// CountFeedbackByUser counts a user's entries.
func (s *Store) CountFeedbackByUser(ctx context.Context, userID int64) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM feedback WHERE user_id = $1", userID).Scan(&count); err != nil {
		return 0, classify("count feedback", err, nil)
	}
	return count, nil
}

// DeleteFeedback removes an unreviewed entry. The row is locked FOR UPDATE so
// a concurrent review cannot slip in between the check and the delete.
func (s *Store) DeleteFeedback(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var reviewed bool
		if err := tx.QueryRow(ctx, "SELECT reviewed FROM feedback WHERE id = $1 FOR UPDATE", id).Scan(&reviewed); err != nil {
			return classify("get feedback", err, nil)
		}
		if reviewed {
			return storage.ErrFeedbackReviewed
		}
		if _, err := tx.Exec(ctx, "DELETE FROM feedback WHERE id = $1", id); err != nil {
			return classify("delete feedback", err, nil)
		}
		return nil
	})
}
