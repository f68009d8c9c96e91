package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/sqlite"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/sqlite/sqlitetest"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/storagetest"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
	"github.com/louisbranch/emojifeedback/internal/testkit/feedbackfakes"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DatabaseURL != "data/feedback.db" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Fatalf("timeout = %v, want 2m", cfg.Timeout)
	}
	if cfg.OlderThan != 7*24*time.Hour {
		t.Fatalf("older than = %v, want 168h", cfg.OlderThan)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q, want en-US", cfg.Locale)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("EMOJI_FEEDBACK_DATABASE_URL", "env.db")
	t.Setenv("EMOJI_FEEDBACK_MAINTENANCE_TIMEOUT", "30s")
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-older-than", "1h", "-json"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DatabaseURL != "env.db" || cfg.Timeout != 30*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.OlderThan != time.Hour || !cfg.JSONOutput {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestParseConfigValidation(t *testing.T) {
	tests := [][]string{
		{"-older-than", "-1h"},
		{"-timeout", "0s"},
	}
	for _, args := range tests {
		fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
		if _, err := ParseConfig(fs, args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestPurgeSessionsUsesGracePeriod(t *testing.T) {
	clock := feedbackfakes.NewClock(storagetest.Epoch)
	store := sqlitetest.Open(t, clock.Now)
	ctx := context.Background()
	owner, err := store.CreateUser(ctx, "owner@example.com", "hash", user.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateSession(ctx, owner.ID, time.Minute); err != nil {
		t.Fatalf("create session: %v", err)
	}
	revoked, err := store.CreateSession(ctx, owner.ID, 72*time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.RevokeSession(ctx, revoked.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.CreateSession(ctx, owner.ID, 72*time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}

	clock.Advance(3 * time.Hour)
	report, err := purgeSessions(ctx, store, clock.Now, 2*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if report.PurgedSessions != 2 {
		t.Fatalf("purged = %d, want the expired and the revoked session", report.PurgedSessions)
	}
	if report.OlderThan != "2h0m0s" {
		t.Fatalf("older than = %q", report.OlderThan)
	}
	active, err := store.CountActiveSessions(ctx, owner.ID, clock.Now())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if active != 1 {
		t.Fatalf("active = %d, want 1", active)
	}
}

func TestPurgeSessionsReportsErrorCode(t *testing.T) {
	clock := feedbackfakes.NewClock(storagetest.Epoch)
	store := sqlitetest.Open(t, clock.Now)
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	report, err := purgeSessions(context.Background(), store, clock.Now, time.Hour)
	if !errors.Is(err, storage.ErrStorage) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if report.Code != "STORAGE_FAILURE" || report.Error == "" {
		t.Fatalf("report = %+v, want storage failure code and detail", report)
	}
}

func TestRunPrintsReport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "feedback.db")
	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	var out bytes.Buffer
	cfg := Config{DatabaseURL: dbPath, Timeout: time.Minute, OlderThan: time.Hour}
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Purged 0 sessions") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	cfg.JSONOutput = true
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run json: %v", err)
	}
	var report Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report %q: %v", out.String(), err)
	}
	if report.PurgedSessions != 0 || report.OlderThan != "1h0m0s" {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	if err := Run(context.Background(), Config{DatabaseURL: "x.db", OlderThan: -time.Second, Timeout: time.Minute}, nil, nil); err == nil {
		t.Fatal("expected validation error")
	}
}
