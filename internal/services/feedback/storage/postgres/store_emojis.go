package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
)

const emojiColumns = `id, "character", meaning`

func scanEmoji(row pgx.Row) (storage.Emoji, error) {
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
	emoji, err := scanEmoji(s.pool.QueryRow(ctx,
		`INSERT INTO emojis ("character", meaning) VALUES ($1, $2) RETURNING `+emojiColumns,
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
	emoji, err := scanEmoji(s.pool.QueryRow(ctx, "SELECT "+emojiColumns+" FROM emojis WHERE id = $1", id))
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
	emoji, err := scanEmoji(s.pool.QueryRow(ctx, "SELECT "+emojiColumns+` FROM emojis WHERE "character" = $1`, character))
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
	rows, err := s.pool.Query(ctx, "SELECT "+emojiColumns+" FROM emojis ORDER BY id")
	if err != nil {
		return nil, classify("list emojis", err, nil)
	}
	emojis, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Emoji, error) {
		return scanEmoji(row)
	})
	if err != nil {
		return nil, classify("list emojis", err, nil)
	}
	return emojis, nil
}
