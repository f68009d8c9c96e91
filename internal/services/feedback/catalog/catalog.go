// Package catalog maintains the fixed set of emojis feedback can be tagged with.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidEmoji indicates an empty character or meaning.
var ErrInvalidEmoji = apperrors.New(apperrors.CodeEmojiInvalid, "emoji character and meaning are required")

// Entry is an emoji definition before it is stored.
type Entry struct {
	Character string
	Meaning   string
}

// Catalog reads and administers emojis.
type Catalog struct {
	store storage.EmojiStore
}

// New builds a Catalog over store.
func New(store storage.EmojiStore) *Catalog {
	return &Catalog{store: store}
}

// NormalizeCharacter trims whitespace and applies NFC so that canonically
// equivalent sequences share one catalog row.
func NormalizeCharacter(character string) string {
	return norm.NFC.String(strings.TrimSpace(character))
}

// List returns every emoji ordered by id.
func (c *Catalog) List(ctx context.Context) ([]storage.Emoji, error) {
	emojis, err := c.store.ListEmojis(ctx)
	if err != nil {
		return nil, fmt.Errorf("list emojis: %w", err)
	}
	return emojis, nil
}

// GetByID returns the emoji with id.
func (c *Catalog) GetByID(ctx context.Context, id int64) (storage.Emoji, error) {
	emoji, err := c.store.GetEmoji(ctx, id)
	if err != nil {
		return storage.Emoji{}, fmt.Errorf("get emoji: %w", err)
	}
	return emoji, nil
}

// GetByCharacter returns the emoji for character after normalization.
func (c *Catalog) GetByCharacter(ctx context.Context, character string) (storage.Emoji, error) {
	normalized := NormalizeCharacter(character)
	if normalized == "" {
		return storage.Emoji{}, ErrInvalidEmoji
	}
	emoji, err := c.store.GetEmojiByCharacter(ctx, normalized)
	if err != nil {
		return storage.Emoji{}, fmt.Errorf("get emoji by character: %w", err)
	}
	return emoji, nil
}

// Add stores a new emoji. Duplicates fail with a DUPLICATE_EMOJI error
// naming the character.
func (c *Catalog) Add(ctx context.Context, character, meaning string) (storage.Emoji, error) {
	character = NormalizeCharacter(character)
	meaning = strings.TrimSpace(meaning)
	if character == "" || meaning == "" {
		return storage.Emoji{}, ErrInvalidEmoji
	}
	emoji, err := c.store.CreateEmoji(ctx, character, meaning)
	if errors.Is(err, storage.ErrDuplicateEmoji) {
		return storage.Emoji{}, apperrors.WithMetadata(apperrors.CodeDuplicateEmoji,
			fmt.Sprintf("emoji %s already exists", character),
			map[string]string{"Character": character})
	}
	if err != nil {
		return storage.Emoji{}, fmt.Errorf("add emoji: %w", err)
	}
	return emoji, nil
}

// Seed adds each entry whose character is not already present and returns
// how many were added.
func (c *Catalog) Seed(ctx context.Context, entries []Entry) (int, error) {
	added := 0
	for _, entry := range entries {
		_, err := c.Add(ctx, entry.Character, entry.Meaning)
		switch {
		case err == nil:
			added++
		case errors.Is(err, storage.ErrDuplicateEmoji):
		default:
			return added, fmt.Errorf("seed %q: %w", entry.Character, err)
		}
	}
	return added, nil
}

// DefaultSeed returns the built-in sentiment set.
func DefaultSeed() []Entry {
	return []Entry{
		{Character: "😀", Meaning: "happy"},
		{Character: "🙂", Meaning: "satisfied"},
		{Character: "😐", Meaning: "neutral"},
		{Character: "😕", Meaning: "confused"},
		{Character: "😞", Meaning: "disappointed"},
		{Character: "😡", Meaning: "angry"},
		{Character: "🎉", Meaning: "delighted"},
		{Character: "💡", Meaning: "suggestion"},
		{Character: "🐛", Meaning: "bug report"},
		{Character: "❤️", Meaning: "love it"},
	}
}
