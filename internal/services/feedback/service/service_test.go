package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/catalog"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/guard"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/identity"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/ledger"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/session"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/sqlite/sqlitetest"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/storagetest"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
	"github.com/louisbranch/emojifeedback/internal/testkit/feedbackfakes"
)

func TestMain(m *testing.M) {
	restore := user.SetHashCostForTesting()
	code := m.Run()
	restore()
	os.Exit(code)
}

type desk struct {
	svc   *Service
	store *feedbackfakes.FlakyStore
	clock *feedbackfakes.Clock
	emoji storage.Emoji
}

func newDesk(t *testing.T) desk {
	t.Helper()
	clock := feedbackfakes.NewClock(storagetest.Epoch)
	store := feedbackfakes.NewFlakyStore(sqlitetest.Open(t, clock.Now))
	svc := New(store, Config{SessionTTL: time.Hour, TokenSecret: "test-secret", TokenIssuer: "emojifeedback-test"}, clock.Now)
	if _, err := svc.Catalog().Seed(context.Background(), catalog.DefaultSeed()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	emoji, err := svc.Catalog().GetByCharacter(context.Background(), "😀")
	if err != nil {
		t.Fatalf("lookup seeded emoji: %v", err)
	}
	return desk{svc: svc, store: store, clock: clock, emoji: emoji}
}

// signIn creates an account with role and returns a session id for it.
func (d desk) signIn(t *testing.T, email string, role user.Role) int64 {
	t.Helper()
	ctx := context.Background()
	if _, err := d.svc.Identity().Register(ctx, email, "password1", role); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	login, err := d.svc.Login(ctx, email, "password1")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return login.Session.ID
}

func TestRegisterAlwaysAssignsUserRole(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()

	registered, err := d.svc.Register(ctx, "self@example.com", "password1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.Role != user.RoleUser {
		t.Fatalf("role = %v, want USER", registered.Role)
	}
	login, err := d.svc.Login(ctx, "self@example.com", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.Email != "self@example.com" || login.User.Role != user.RoleUser {
		t.Fatalf("login user = %+v", login.User)
	}
	if !login.Session.ExpiresAt.Equal(storagetest.Epoch.Add(time.Hour)) {
		t.Fatalf("session expires at %v, want epoch + ttl", login.Session.ExpiresAt)
	}
	if login.Token == "" {
		t.Fatal("expected a token when a secret is configured")
	}

	if _, err := d.svc.Register(ctx, "self@example.com", "password2"); !errors.Is(err, identity.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	if _, err := d.svc.Register(ctx, "known@example.com", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, wrong := d.svc.Login(ctx, "known@example.com", "password2")
	_, unknown := d.svc.Login(ctx, "unknown@example.com", "password1")
	if wrong != identity.ErrInvalidCredentials || unknown != identity.ErrInvalidCredentials {
		t.Fatalf("errors differ: wrong=%v unknown=%v", wrong, unknown)
	}
}

func TestResolveToken(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	if _, err := d.svc.Register(ctx, "token@example.com", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := d.svc.Login(ctx, "token@example.com", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	sessionID, err := d.svc.Resolve(ctx, login.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sessionID != login.Session.ID {
		t.Fatalf("resolved %d, want %d", sessionID, login.Session.ID)
	}

	if _, err := d.svc.Resolve(ctx, "garbage"); apperrors.GetCode(err) != apperrors.CodeSessionNotFound {
		t.Fatalf("expected session not found for garbage token, got %v", err)
	}

	if err := d.svc.Logout(ctx, login.Session.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := d.svc.Resolve(ctx, login.Token); !errors.Is(err, session.ErrSessionExpired) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}
}

func TestSessionExpiryBlocksDesk(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	sid := d.signIn(t, "expiring@example.com", user.RoleUser)

	if _, err := d.svc.ListEmojis(ctx, sid); err != nil {
		t.Fatalf("list emojis: %v", err)
	}
	d.clock.Advance(time.Hour)
	if _, err := d.svc.ListEmojis(ctx, sid); !errors.Is(err, session.ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if _, err := d.svc.ListEmojis(ctx, 424242); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("expected unknown session, got %v", err)
	}
}

func TestRolePolicyAtDesk(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	admin := d.signIn(t, "admin@example.com", user.RoleAdmin)
	member := d.signIn(t, "member@example.com", user.RoleUser)
	guest := d.signIn(t, "guest@example.com", user.RoleGuest)

	if _, err := d.svc.SubmitFeedback(ctx, guest, d.emoji.ID, "hello"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("guest submit: expected unauthorized, got %v", err)
	}
	if _, err := d.svc.ListMyFeedback(ctx, guest); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("guest list own: expected unauthorized, got %v", err)
	}
	if _, err := d.svc.ListEmojis(ctx, guest); err != nil {
		t.Fatalf("guest list emojis: %v", err)
	}
	if _, err := d.svc.LookupEmoji(ctx, guest, "😀"); err != nil {
		t.Fatalf("guest lookup emoji: %v", err)
	}

	entry, err := d.svc.SubmitFeedback(ctx, member, d.emoji.ID, "works well")
	if err != nil {
		t.Fatalf("member submit: %v", err)
	}
	if _, err := d.svc.MarkReviewed(ctx, member, entry.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("member mark reviewed: expected unauthorized, got %v", err)
	}
	if _, err := d.svc.ListUnreviewed(ctx, member); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("member list unreviewed: expected unauthorized, got %v", err)
	}
	if err := d.svc.DeleteFeedback(ctx, member, entry.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("member delete: expected unauthorized, got %v", err)
	}
	if _, err := d.svc.UserProfile(ctx, member, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("member view other profile: expected unauthorized, got %v", err)
	}

	unreviewed, err := d.svc.ListUnreviewed(ctx, admin)
	if err != nil {
		t.Fatalf("admin list unreviewed: %v", err)
	}
	if len(unreviewed) != 1 || unreviewed[0].ID != entry.ID {
		t.Fatalf("unreviewed = %+v", unreviewed)
	}
	reviewed, err := d.svc.MarkReviewed(ctx, admin, entry.ID)
	if err != nil {
		t.Fatalf("admin mark reviewed: %v", err)
	}
	if !reviewed.Reviewed {
		t.Fatal("expected reviewed entry")
	}
	if _, err := d.svc.MarkReviewed(ctx, admin, entry.ID); err != nil {
		t.Fatalf("second mark reviewed: %v", err)
	}
	if err := d.svc.DeleteFeedback(ctx, admin, entry.ID); !errors.Is(err, storage.ErrFeedbackReviewed) {
		t.Fatalf("deleting reviewed feedback: got %v", err)
	}
}

func TestUnauthorizedCarriesLocalizedMessage(t *testing.T) {
	d := newDesk(t)
	guest := d.signIn(t, "guest@example.com", user.RoleGuest)
	_, err := d.svc.SubmitFeedback(context.Background(), guest, d.emoji.ID, "hello")
	if got := apperrors.GetCode(err); got != apperrors.CodeUnauthorized {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeUnauthorized)
	}
	if got := apperrors.Message(err, "pt-BR"); got != "Você não tem permissão para isso." {
		t.Fatalf("localized message = %q", got)
	}
	if guard.Allow(user.RoleGuest, guard.SubmitFeedback) {
		t.Fatal("guard allows guest submit")
	}
}

func TestSubmitUnknownEmojiCreatesNothing(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	member := d.signIn(t, "member@example.com", user.RoleUser)

	if _, err := d.svc.SubmitFeedback(ctx, member, 9999, "hello"); !errors.Is(err, storage.ErrEmojiNotFound) {
		t.Fatalf("expected emoji not found, got %v", err)
	}
	if _, err := d.svc.SubmitFeedback(ctx, member, d.emoji.ID, "   "); !errors.Is(err, ledger.ErrEmptyContent) {
		t.Fatalf("expected empty content, got %v", err)
	}
	mine, err := d.svc.ListMyFeedback(ctx, member)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("expected no feedback rows, got %d", len(mine))
	}
}

func TestListMyHistory(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	member := d.signIn(t, "member@example.com", user.RoleUser)
	other := d.signIn(t, "other@example.com", user.RoleUser)
	guest := d.signIn(t, "guest@example.com", user.RoleGuest)

	bug, err := d.svc.Catalog().GetByCharacter(ctx, "🐛")
	if err != nil {
		t.Fatalf("lookup emoji: %v", err)
	}
	if _, err := d.svc.SubmitFeedback(ctx, member, d.emoji.ID, "first"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := d.svc.SubmitFeedback(ctx, other, d.emoji.ID, "not mine"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := d.svc.SubmitFeedback(ctx, member, bug.ID, "second"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	d.store.FailNext(1)
	history, err := d.svc.ListMyHistory(ctx, member)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Content != "second" || history[1].Content != "first" {
		t.Fatalf("history = %+v, want newest first", history)
	}
	if history[0].EmojiCharacter != "🐛" || history[0].EmojiMeaning != bug.Meaning {
		t.Fatalf("history entry = %+v, want emoji details", history[0])
	}
	if _, err := d.svc.ListMyHistory(ctx, guest); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("guest history: expected unauthorized, got %v", err)
	}
}

func TestListFeedbackPaging(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	admin := d.signIn(t, "admin@example.com", user.RoleAdmin)
	member := d.signIn(t, "member@example.com", user.RoleUser)
	for _, content := range []string{"a", "b", "c"} {
		if _, err := d.svc.SubmitFeedback(ctx, member, d.emoji.ID, content); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	first, err := d.svc.ListFeedback(ctx, admin, 2, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Entries) != 2 || first.Entries[0].Content != "c" || first.NextPageToken == "" {
		t.Fatalf("first page = %+v", first)
	}
	second, err := d.svc.ListFeedback(ctx, admin, 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Entries) != 1 || second.Entries[0].Content != "a" || second.NextPageToken != "" {
		t.Fatalf("second page = %+v", second)
	}
	if second.Entries[0].UserEmail != "member@example.com" {
		t.Fatalf("entry email = %q", second.Entries[0].UserEmail)
	}
}

func TestProfiles(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	admin := d.signIn(t, "admin@example.com", user.RoleAdmin)
	member := d.signIn(t, "member@example.com", user.RoleUser)
	if _, err := d.svc.SubmitFeedback(ctx, member, d.emoji.ID, "hello"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	mine, err := d.svc.MyProfile(ctx, member)
	if err != nil {
		t.Fatalf("my profile: %v", err)
	}
	if mine.FeedbackCount != 1 || mine.ActiveSessionCount != 1 {
		t.Fatalf("my profile = %+v", mine)
	}
	other, err := d.svc.UserProfile(ctx, admin, mine.User.ID)
	if err != nil {
		t.Fatalf("user profile: %v", err)
	}
	if other.User.Email != "member@example.com" {
		t.Fatalf("user profile = %+v", other)
	}
	if _, err := d.svc.UserProfile(ctx, admin, 9999); !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestChangeMyPasswordRevokesSessions(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	first := d.signIn(t, "rotate@example.com", user.RoleGuest)
	second, err := d.svc.Login(ctx, "rotate@example.com", "password1")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := d.svc.ChangeMyPassword(ctx, first, "password2"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	for _, sid := range []int64{first, second.Session.ID} {
		if _, err := d.svc.MyProfile(ctx, sid); !errors.Is(err, session.ErrSessionExpired) {
			t.Fatalf("session %d should be revoked, got %v", sid, err)
		}
	}
	if _, err := d.svc.Login(ctx, "rotate@example.com", "password2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestChangeRole(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	admin := d.signIn(t, "admin@example.com", user.RoleAdmin)
	guestSession := d.signIn(t, "guest@example.com", user.RoleGuest)

	profile, err := d.svc.MyProfile(ctx, guestSession)
	if err != nil {
		t.Fatalf("guest profile: %v", err)
	}
	if _, err := d.svc.ChangeRole(ctx, guestSession, profile.User.ID, user.RoleAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("guest self-elevation: expected unauthorized, got %v", err)
	}
	promoted, err := d.svc.ChangeRole(ctx, admin, profile.User.ID, user.RoleUser)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if promoted.Role != user.RoleUser {
		t.Fatalf("role = %v", promoted.Role)
	}
	if _, err := d.svc.SubmitFeedback(ctx, guestSession, d.emoji.ID, "now allowed"); err != nil {
		t.Fatalf("promoted user submit: %v", err)
	}
	if _, err := d.svc.ChangeRole(ctx, admin, 9999, user.RoleUser); !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestReadsRetryStorageFailureOnce(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()
	sid := d.signIn(t, "retry@example.com", user.RoleUser)

	d.store.FailNext(1)
	emojis, err := d.svc.ListEmojis(ctx, sid)
	if err != nil {
		t.Fatalf("list emojis after one failure: %v", err)
	}
	if len(emojis) != len(catalog.DefaultSeed()) {
		t.Fatalf("emojis = %d, want %d", len(emojis), len(catalog.DefaultSeed()))
	}

	d.store.FailNext(2)
	_, err = d.svc.ListEmojis(ctx, sid)
	if !errors.Is(err, storage.ErrStorage) {
		t.Fatalf("expected storage failure after two failures, got %v", err)
	}
	if !errors.Is(err, feedbackfakes.ErrInjected) {
		t.Fatalf("expected injected cause, got %v", err)
	}
}
