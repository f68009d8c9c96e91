package sqlite

import (
	"context"
	"fmt"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
)

const emojiColumns = `id, "character", meaning`

func scanEmoji(row rowScanner) (storage.Emoji, error) {
	var emoji storage.Emoji
	if err := row.Scan(&emoji.ID, &emoji.Character, &emoji.Meaning); err != nil {
		return storage.Emoji{}, err
	}
	return emoji, nil
}

// CreateEmoji inserts a catalog entry; the UNIQUE constraint on character decides races.
func (s *Store) CreateEmoji(ctx context.Context, character, meaning string) (storage.Emoji, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Emoji{}, err
	}
	if character == "" || meaning == "" {
		return storage.Emoji{}, fmt.Errorf("character and meaning are required")
	}
	emoji, err := scanEmoji(s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO emojis ("character", meaning) VALUES (?, ?) RETURNING `+emojiColumns,
		character, meaning,
	))
	if err != nil {
		return storage.Emoji{}, classify("create emoji", err, storage.ErrDuplicateEmoji)
	}
	return emoji, nil
}

// GetEmoji returns a catalog entry by id.
func (s *Store) GetEmoji(ctx context.Context, id int64) (storage.Emoji, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Emoji{}, err
	}
	emoji, err := scanEmoji(s.sqlDB.QueryRowContext(ctx, "SELECT "+emojiColumns+" FROM emojis WHERE id = ?", id))
	if err != nil {
		return storage.Emoji{}, classify("get emoji", err, nil)
	}
	return emoji, nil
}

// GetEmojiByCharacter returns a catalog entry by its exact stored character.
func (s *Store) GetEmojiByCharacter(ctx context.Context, character string) (storage.Emoji, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Emoji{}, err
	}
	emoji, err := scanEmoji(s.sqlDB.QueryRowContext(ctx, "SELECT "+emojiColumns+` FROM emojis WHERE "character" = ?`, character))
	if err != nil {
		return storage.Emoji{}, classify("get emoji by character", err, nil)
	}
	return emoji, nil
}

// ListEmojis returns the catalog ordered by id.
func (s *Store) ListEmojis(ctx context.Context) ([]storage.Emoji, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT "+emojiColumns+" FROM emojis ORDER BY id")
	if err != nil {
		return nil, classify("list emojis", err, nil)
	}
	defer rows.Close()

	emojis := make([]storage.Emoji, 0)
	for rows.Next() {
		emoji, err := scanEmoji(rows)
		if err != nil {
			return nil, classify("scan emoji", err, nil)
		}
		emojis = append(emojis, emoji)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate emojis", err, nil)
	}
	return emojis, nil
}
