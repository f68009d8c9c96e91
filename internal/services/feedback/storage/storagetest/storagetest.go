// Package storagetest is a behavioral suite every storage.Store backend runs.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
	"github.com/louisbranch/emojifeedback/internal/testkit/feedbackfakes"
)

// Epoch is the fake clock start used by the suite.
var Epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Opener returns an empty, migrated store that stamps times with clock.
type Opener func(t *testing.T, clock func() time.Time) storage.Store

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store storage.Store, clock *feedbackfakes.Clock)
	}{
		{"CreateUserAssignsIDAndTimestamp", testCreateUser},
		{"CreateUserRejectsDuplicateEmail", testDuplicateEmail},
		{"CreateUserEmailIsCaseSensitive", testEmailCaseSensitive},
		{"ConcurrentCreateUserSameEmail", testConcurrentDuplicateEmail},
		{"UserNotFound", testUserNotFound},
		{"UpdateUser", testUpdateUser},
		{"CreateSessionStampsTimes", testCreateSession},
		{"CreateSessionUnknownUser", testCreateSessionUnknownUser},
		{"RevokeSession", testRevokeSession},
		{"RevokeUserSessionsAndCount", testRevokeUserSessions},
		{"DeleteSessionsBefore", testDeleteSessionsBefore},
		{"Emojis", testEmojis},
		{"CreateFeedbackChecksReferences", testCreateFeedbackReferences},
		{"MarkFeedbackReviewedIdempotent", testMarkReviewed},
		{"ListFeedbackOrdering", testListFeedbackOrdering},
		{"ListFeedbackPage", testListFeedbackPage},
		{"ListFeedbackHistory", testListFeedbackHistory},
		{"DeleteFeedback", testDeleteFeedback},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := feedbackfakes.NewClock(Epoch)
			store := open(t, clock.Now)
			tc.fn(t, store, clock)
		})
	}
}

func mustUser(t *testing.T, store storage.Store, email string) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), email, "hash", user.RoleUser)
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func mustEmoji(t *testing.T, store storage.Store, character, meaning string) storage.Emoji {
	t.Helper()
	emoji, err := store.CreateEmoji(context.Background(), character, meaning)
	if err != nil {
		t.Fatalf("create emoji %s: %v", character, err)
	}
	return emoji
}

func mustFeedback(t *testing.T, store storage.Store, userID, emojiID int64, content string) storage.Feedback {
	t.Helper()
	entry, err := store.CreateFeedback(context.Background(), userID, emojiID, content)
	if err != nil {
		t.Fatalf("create feedback: %v", err)
	}
	return entry
}

func testCreateUser(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	created, err := store.CreateUser(ctx, "ana@example.com", "hash-1", user.RoleAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected store-assigned id, got %d", created.ID)
	}
	if !created.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("created_at = %v, want %v", created.CreatedAt, clock.Now())
	}
	if created.Role != user.RoleAdmin || created.PasswordHash != "hash-1" {
		t.Fatalf("unexpected user: %+v", created)
	}

	got, err := store.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got != created {
		t.Fatalf("get user = %+v, want %+v", got, created)
	}
	byEmail, err := store.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("by email id = %d, want %d", byEmail.ID, created.ID)
	}
}

func testDuplicateEmail(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	ctx := context.Background()
	first := mustUser(t, store, "dup@example.com")

	_, err := store.CreateUser(ctx, "dup@example.com", "other", user.RoleGuest)
	if !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	got, err := store.GetUserByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if got.ID != first.ID || got.Role != user.RoleUser {
		t.Fatalf("duplicate insert changed the stored user: %+v", got)
	}
}

func testEmailCaseSensitive(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	lower := mustUser(t, store, "case@example.com")
	upper := mustUser(t, store, "Case@example.com")
	if lower.ID == upper.ID {
		t.Fatal("expected distinct users for emails that differ in case")
	}
}

func testConcurrentDuplicateEmail(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
		others     []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateUser(context.Background(), "race@example.com", "hash", user.RoleUser)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, storage.ErrDuplicateEmail):
				duplicates++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 || duplicates != workers-1 {
		t.Fatalf("successes = %d, duplicates = %d", successes, duplicates)
	}
}

func testUserNotFound(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	ctx := context.Background()
	if _, err := store.GetUser(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found by email, got %v", err)
	}
	if _, _, err := store.UpdateUserPasswordAndRevokeSessions(ctx, 404, "hash"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on password update, got %v", err)
	}
	if _, err := store.UpdateUserRole(ctx, 404, user.RoleAdmin); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on role update, got %v", err)
	}
}

func testUpdateUser(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "update@example.com")
	other := mustUser(t, store, "bystander@example.com")
	for range 2 {
		if _, err := store.CreateSession(ctx, u.ID, time.Hour); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}
	if _, err := store.CreateSession(ctx, other.ID, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}

	updated, revoked, err := store.UpdateUserPasswordAndRevokeSessions(ctx, u.ID, "new-hash")
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if updated.PasswordHash != "new-hash" || updated.Email != u.Email {
		t.Fatalf("unexpected user after password update: %+v", updated)
	}
	if revoked != 2 {
		t.Fatalf("revoked = %d, want 2", revoked)
	}
	if active, _ := store.CountActiveSessions(ctx, u.ID, clock.Now()); active != 0 {
		t.Fatalf("active sessions after password update = %d, want 0", active)
	}
	if active, _ := store.CountActiveSessions(ctx, other.ID, clock.Now()); active != 1 {
		t.Fatalf("bystander sessions = %d, want 1", active)
	}

	promoted, err := store.UpdateUserRole(ctx, u.ID, user.RoleAdmin)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if promoted.Role != user.RoleAdmin || promoted.PasswordHash != "new-hash" {
		t.Fatalf("unexpected user after role update: %+v", promoted)
	}
	if _, err := store.UpdateUserRole(ctx, u.ID, user.RoleUnspecified); !errors.Is(err, user.ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
}

func testCreateSession(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "session@example.com")

	session, err := store.CreateSession(ctx, u.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID <= 0 || session.UserID != u.ID {
		t.Fatalf("unexpected session: %+v", session)
	}
	if !session.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("created_at = %v, want %v", session.CreatedAt, clock.Now())
	}
	if !session.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Fatalf("expires_at = %v, want %v", session.ExpiresAt, clock.Now().Add(time.Hour))
	}
	if session.RevokedAt != nil {
		t.Fatal("new session must not be revoked")
	}

	got, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.ID != session.ID || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("get session = %+v, want %+v", got, session)
	}
	if _, err := store.GetSession(ctx, session.ID+100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testCreateSessionUnknownUser(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	if _, err := store.CreateSession(context.Background(), 999, time.Hour); !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func testRevokeSession(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "revoke@example.com")
	session, err := store.CreateSession(ctx, u.ID, time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	clock.Advance(time.Minute)
	if err := store.RevokeSession(ctx, session.ID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	firstRevoke := clock.Now()

	clock.Advance(time.Minute)
	if err := store.RevokeSession(ctx, session.ID); err != nil {
		t.Fatalf("revoke session again: %v", err)
	}

	got, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(firstRevoke) {
		t.Fatalf("revoked_at = %v, want %v", got.RevokedAt, firstRevoke)
	}
	if got.ActiveAt(clock.Now()) {
		t.Fatal("revoked session must not be active")
	}
	if err := store.RevokeSession(ctx, session.ID+100); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for unknown session, got %v", err)
	}
}

func testRevokeUserSessions(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "many@example.com")
	other := mustUser(t, store, "other@example.com")
	for i := 0; i < 3; i++ {
		if _, err := store.CreateSession(ctx, u.ID, time.Hour); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}
	if _, err := store.CreateSession(ctx, u.ID, time.Second); err != nil {
		t.Fatalf("create short session: %v", err)
	}
	if _, err := store.CreateSession(ctx, other.ID, time.Hour); err != nil {
		t.Fatalf("create other session: %v", err)
	}

	clock.Advance(2 * time.Second)
	active, err := store.CountActiveSessions(ctx, u.ID, clock.Now())
	if err != nil {
		t.Fatalf("count active sessions: %v", err)
	}
	if active != 3 {
		t.Fatalf("active sessions = %d, want 3", active)
	}

	revoked, err := store.RevokeUserSessions(ctx, u.ID)
	if err != nil {
		t.Fatalf("revoke user sessions: %v", err)
	}
	if revoked != 4 {
		t.Fatalf("revoked = %d, want 4", revoked)
	}
	if active, _ := store.CountActiveSessions(ctx, u.ID, clock.Now()); active != 0 {
		t.Fatalf("active after revoke = %d, want 0", active)
	}
	if active, _ := store.CountActiveSessions(ctx, other.ID, clock.Now()); active != 1 {
		t.Fatalf("other user active = %d, want 1", active)
	}
	if again, _ := store.RevokeUserSessions(ctx, u.ID); again != 0 {
		t.Fatalf("second revoke touched %d sessions, want 0", again)
	}
}

func testDeleteSessionsBefore(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "purge@example.com")
	expired, err := store.CreateSession(ctx, u.ID, time.Minute)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	live, err := store.CreateSession(ctx, u.ID, 48*time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	revoked, err := store.CreateSession(ctx, u.ID, 48*time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.RevokeSession(ctx, revoked.ID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}

	clock.Advance(2 * time.Hour)
	deleted, err := store.DeleteSessionsBefore(ctx, clock.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete sessions: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
	if _, err := store.GetSession(ctx, expired.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected expired session purged, got %v", err)
	}
	if _, err := store.GetSession(ctx, live.ID); err != nil {
		t.Fatalf("expected live session kept: %v", err)
	}
}

func testEmojis(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	ctx := context.Background()
	smile := mustEmoji(t, store, "😀", "happy")
	sad := mustEmoji(t, store, "😢", "sad")

	if _, err := store.CreateEmoji(ctx, "😀", "grinning"); !errors.Is(err, storage.ErrDuplicateEmoji) {
		t.Fatalf("expected duplicate emoji, got %v", err)
	}

	got, err := store.GetEmoji(ctx, sad.ID)
	if err != nil {
		t.Fatalf("get emoji: %v", err)
	}
	if got != sad {
		t.Fatalf("get emoji = %+v, want %+v", got, sad)
	}
	byChar, err := store.GetEmojiByCharacter(ctx, "😀")
	if err != nil {
		t.Fatalf("get emoji by character: %v", err)
	}
	if byChar != smile {
		t.Fatalf("by character = %+v, want %+v", byChar, smile)
	}
	if _, err := store.GetEmoji(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.GetEmojiByCharacter(ctx, "🦄"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found by character, got %v", err)
	}

	list, err := store.ListEmojis(ctx)
	if err != nil {
		t.Fatalf("list emojis: %v", err)
	}
	if len(list) != 2 || list[0] != smile || list[1] != sad {
		t.Fatalf("list emojis = %+v", list)
	}
}

func testCreateFeedbackReferences(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "author@example.com")
	emoji := mustEmoji(t, store, "👍", "approve")

	if _, err := store.CreateFeedback(ctx, u.ID, emoji.ID+50, "nice"); !errors.Is(err, storage.ErrEmojiNotFound) {
		t.Fatalf("expected emoji not found, got %v", err)
	}
	if _, err := store.CreateFeedback(ctx, u.ID+50, emoji.ID, "nice"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if count, _ := store.CountFeedbackByUser(ctx, u.ID); count != 0 {
		t.Fatalf("failed submissions wrote %d rows", count)
	}

	entry, err := store.CreateFeedback(ctx, u.ID, emoji.ID, "works well")
	if err != nil {
		t.Fatalf("create feedback: %v", err)
	}
	if entry.ID <= 0 || entry.Reviewed || entry.Content != "works well" {
		t.Fatalf("unexpected feedback: %+v", entry)
	}
	if !entry.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("created_at = %v, want %v", entry.CreatedAt, clock.Now())
	}
	got, err := store.GetFeedback(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get feedback: %v", err)
	}
	if got != entry {
		t.Fatalf("get feedback = %+v, want %+v", got, entry)
	}
}

func testMarkReviewed(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "review@example.com")
	emoji := mustEmoji(t, store, "🤔", "unsure")
	entry := mustFeedback(t, store, u.ID, emoji.ID, "hmm")

	first, err := store.MarkFeedbackReviewed(ctx, entry.ID)
	if err != nil {
		t.Fatalf("mark reviewed: %v", err)
	}
	second, err := store.MarkFeedbackReviewed(ctx, entry.ID)
	if err != nil {
		t.Fatalf("mark reviewed again: %v", err)
	}
	if !first.Reviewed || first != second {
		t.Fatalf("expected identical reviewed entries, got %+v and %+v", first, second)
	}
	if _, err := store.MarkFeedbackReviewed(ctx, entry.ID+10); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testListFeedbackOrdering(t *testing.T, store storage.Store, clock *feedbackfakes.Clock) {
	ctx := context.Background()
	a := mustUser(t, store, "a@example.com")
	b := mustUser(t, store, "b@example.com")
	emoji := mustEmoji(t, store, "🎉", "celebrate")

	var ids []int64
	for i, author := range []user.User{a, b, a, b} {
		clock.Advance(time.Second)
		entry := mustFeedback(t, store, author.ID, emoji.ID, fmt.Sprintf("entry %d", i))
		ids = append(ids, entry.ID)
	}
	if _, err := store.MarkFeedbackReviewed(ctx, ids[1]); err != nil {
		t.Fatalf("mark reviewed: %v", err)
	}

	unreviewed, err := store.ListUnreviewedFeedback(ctx)
	if err != nil {
		t.Fatalf("list unreviewed: %v", err)
	}
	if got := feedbackIDs(unreviewed); !equalIDs(got, []int64{ids[0], ids[2], ids[3]}) {
		t.Fatalf("unreviewed ids = %v", got)
	}

	byA, err := store.ListFeedbackByUser(ctx, a.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if got := feedbackIDs(byA); !equalIDs(got, []int64{ids[0], ids[2]}) {
		t.Fatalf("user a ids = %v", got)
	}
	if count, _ := store.CountFeedbackByUser(ctx, b.ID); count != 2 {
		t.Fatalf("user b count = %d, want 2", count)
	}
	empty, err := store.ListFeedbackByUser(ctx, 999)
	if err != nil {
		t.Fatalf("list by unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no feedback for unknown user, got %d", len(empty))
	}
}

func testListFeedbackPage(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "pager@example.com")
	emoji := mustEmoji(t, store, "🔥", "hot")
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, mustFeedback(t, store, u.ID, emoji.ID, fmt.Sprintf("entry %d", i)).ID)
	}

	first, err := store.ListFeedbackPage(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first) != 2 || first[0].ID != ids[4] || first[1].ID != ids[3] {
		t.Fatalf("first page = %+v", first)
	}
	if first[0].UserEmail != u.Email || first[0].EmojiCharacter != "🔥" || first[0].EmojiMeaning != "hot" {
		t.Fatalf("expected joined author and emoji, got %+v", first[0])
	}

	rest, err := store.ListFeedbackPage(ctx, 10, first[1].ID)
	if err != nil {
		t.Fatalf("list next page: %v", err)
	}
	if len(rest) != 3 || rest[0].ID != ids[2] || rest[2].ID != ids[0] {
		t.Fatalf("next page = %+v", rest)
	}
}

func testListFeedbackHistory(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	ctx := context.Background()
	a := mustUser(t, store, "history-a@example.com")
	b := mustUser(t, store, "history-b@example.com")
	smile := mustEmoji(t, store, "😀", "grinning face")
	sad := mustEmoji(t, store, "😢", "crying face")
	first := mustFeedback(t, store, a.ID, smile.ID, "first")
	mustFeedback(t, store, b.ID, sad.ID, "other user")
	second := mustFeedback(t, store, a.ID, sad.ID, "second")

	history, err := store.ListFeedbackHistory(ctx, a.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 2 || history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("history = %+v", history)
	}
	if history[0].EmojiCharacter != "😢" || history[0].EmojiMeaning != "crying face" {
		t.Fatalf("expected joined emoji on newest entry, got %+v", history[0])
	}
	if history[1].EmojiCharacter != "😀" || history[1].UserEmail != a.Email {
		t.Fatalf("expected joined emoji and author on oldest entry, got %+v", history[1])
	}

	empty, err := store.ListFeedbackHistory(ctx, 999)
	if err != nil {
		t.Fatalf("list history for unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %d", len(empty))
	}
}

func testDeleteFeedback(t *testing.T, store storage.Store, _ *feedbackfakes.Clock) {
	ctx := context.Background()
	u := mustUser(t, store, "delete@example.com")
	emoji := mustEmoji(t, store, "🗑", "trash")
	keep := mustFeedback(t, store, u.ID, emoji.ID, "reviewed one")
	drop := mustFeedback(t, store, u.ID, emoji.ID, "unreviewed one")
	if _, err := store.MarkFeedbackReviewed(ctx, keep.ID); err != nil {
		t.Fatalf("mark reviewed: %v", err)
	}

	if err := store.DeleteFeedback(ctx, keep.ID); !errors.Is(err, storage.ErrFeedbackReviewed) {
		t.Fatalf("expected reviewed feedback to be protected, got %v", err)
	}
	if err := store.DeleteFeedback(ctx, drop.ID); err != nil {
		t.Fatalf("delete feedback: %v", err)
	}
	if _, err := store.GetFeedback(ctx, drop.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected deleted feedback gone, got %v", err)
	}
	if err := store.DeleteFeedback(ctx, drop.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func feedbackIDs(entries []storage.Feedback) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
