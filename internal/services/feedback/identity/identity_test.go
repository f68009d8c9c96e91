package identity

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
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

func newService(t *testing.T) (*Service, storage.Store, *feedbackfakes.Clock) {
	t.Helper()
	clock := feedbackfakes.NewClock(storagetest.Epoch)
	store := sqlitetest.Open(t, clock.Now)
	return NewService(store, clock.Now), store, clock
}

func TestRegisterStoresHashOnly(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "  ana@example.com ", "correct horse", user.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}
	if created.Email != "ana@example.com" {
		t.Fatalf("email = %q, want trimmed", created.Email)
	}
	if created.PasswordHash == "correct horse" || created.PasswordHash == "" {
		t.Fatalf("password hash not stored: %q", created.PasswordHash)
	}
	if !user.VerifyPassword(created.PasswordHash, "correct horse") {
		t.Fatal("stored hash does not verify")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     user.Role
		want     error
	}{
		{name: "empty email", email: " ", password: "password1", role: user.RoleUser, want: user.ErrInvalidEmail},
		{name: "malformed email", email: "nobody", password: "password1", role: user.RoleUser, want: user.ErrInvalidEmail},
		{name: "short password", email: "a@b.c", password: "short", role: user.RoleUser, want: user.ErrInvalidPassword},
		{name: "unspecified role", email: "a@b.c", password: "password1", role: user.RoleUnspecified, want: user.ErrInvalidRole},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.email, tc.password, tc.role)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Register error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "password1", user.RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, " dup@example.com", "password2", user.RoleGuest)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
	if apperrors.GetCode(err) != apperrors.CodeDuplicateEmail {
		t.Fatalf("expected DUPLICATE_EMAIL code, got %v", apperrors.GetCode(err))
	}
	if _, err := svc.Register(ctx, "Dup@example.com", "password3", user.RoleUser); err != nil {
		t.Fatalf("case-distinct email should register: %v", err)
	}
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "race@example.com", "password1", user.RoleUser)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicateEmail):
				dupes++
			default:
				t.Errorf("unexpected register error: %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 || dupes != workers-1 {
		t.Fatalf("successes=%d dupes=%d, want 1 and %d", successes, dupes, workers-1)
	}
}

func TestAuthenticateUniformFailure(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "login@example.com", "password1", user.RoleAdmin)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := svc.Authenticate(ctx, "login@example.com", "password1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != registered.ID || got.Role != user.RoleAdmin {
		t.Fatalf("authenticated user = %+v, want id %d admin", got, registered.ID)
	}

	_, wrongPassword := svc.Authenticate(ctx, "login@example.com", "password2")
	_, unknownEmail := svc.Authenticate(ctx, "ghost@example.com", "password1")
	_, badEmail := svc.Authenticate(ctx, "not-an-email", "password1")
	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown email": unknownEmail, "bad email": badEmail} {
		if err != ErrInvalidCredentials {
			t.Fatalf("%s: error = %v, want the ErrInvalidCredentials value", name, err)
		}
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	if _, err := svc.GetByID(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, store, clock := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "rotate@example.com", "password1", user.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := store.CreateSession(ctx, u.ID, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := store.CreateSession(ctx, u.ID, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := svc.ChangePassword(ctx, u.ID, "tiny"); !errors.Is(err, user.ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if _, err := svc.ChangePassword(ctx, u.ID, "password2"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	active, err := store.CountActiveSessions(ctx, u.ID, clock.Now())
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if active != 0 {
		t.Fatalf("active sessions = %d, want 0", active)
	}
	if _, err := svc.Authenticate(ctx, "rotate@example.com", "password1"); err != ErrInvalidCredentials {
		t.Fatalf("old password should fail, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "rotate@example.com", "password2"); err != nil {
		t.Fatalf("new password: %v", err)
	}
	if _, err := svc.ChangePassword(ctx, 999, "password3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChangePasswordKeepsOldStateWhenRevokeFails(t *testing.T) {
	clock := feedbackfakes.NewClock(storagetest.Epoch)
	store := sqlitetest.Open(t, clock.Now)
	svc := NewService(store, clock.Now)
	ctx := context.Background()

	u, err := svc.Register(ctx, "stuck@example.com", "password1", user.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := store.CreateSession(ctx, u.ID, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := store.DB().Exec(`CREATE TRIGGER block_revoke BEFORE UPDATE OF revoked_at ON sessions
BEGIN SELECT RAISE(ABORT, 'revoke blocked'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	if _, err := svc.ChangePassword(ctx, u.ID, "password2"); apperrors.GetCode(err) != apperrors.CodeStorageFailure {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "stuck@example.com", "password1"); err != nil {
		t.Fatalf("old password should still authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "stuck@example.com", "password2"); err != ErrInvalidCredentials {
		t.Fatalf("new password should not be stored, got %v", err)
	}
	active, err := store.CountActiveSessions(ctx, u.ID, clock.Now())
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if active != 1 {
		t.Fatalf("active sessions = %d, want 1", active)
	}
}

func TestChangeRole(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "promote@example.com", "password1", user.RoleGuest)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.ChangeRole(ctx, u.ID, user.Role(42)); !errors.Is(err, user.ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
	updated, err := svc.ChangeRole(ctx, u.ID, user.RoleAdmin)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.Role != user.RoleAdmin {
		t.Fatalf("role = %v, want ADMIN", updated.Role)
	}
	if _, err := svc.ChangeRole(ctx, 999, user.RoleUser); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileCounts(t *testing.T) {
	svc, store, clock := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "profile@example.com", "password1", user.RoleUser)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	emoji, err := store.CreateEmoji(ctx, "😀", "happy")
	if err != nil {
		t.Fatalf("create emoji: %v", err)
	}
	for _, content := range []string{"first", "second"} {
		if _, err := store.CreateFeedback(ctx, u.ID, emoji.ID, content); err != nil {
			t.Fatalf("create feedback: %v", err)
		}
	}
	if _, err := store.CreateSession(ctx, u.ID, time.Minute); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := store.CreateSession(ctx, u.ID, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}
	clock.Advance(2 * time.Minute)

	profile, err := svc.Profile(ctx, u.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.User.ID != u.ID || profile.FeedbackCount != 2 || profile.ActiveSessionCount != 1 {
		t.Fatalf("profile = %+v, want 2 feedback and 1 active session", profile)
	}
	if _, err := svc.Profile(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
