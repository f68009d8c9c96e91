package storage

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/louisbranch/emojifeedback/internal/platform/errors"
)

func TestRetryOnceRetriesStorageFailureOnce(t *testing.T) {
	calls := 0
	got, err := RetryOnce(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, apperrors.Storage("get user", errors.New("database is locked"))
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("retry once: %v", err)
	}
	if got != 7 || calls != 2 {
		t.Fatalf("got %d after %d calls, want 7 after 2", got, calls)
	}
}

func TestRetryOnceGivesUpAfterSecondFailure(t *testing.T) {
	calls := 0
	_, err := RetryOnce(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, apperrors.Storage("list", errors.New("boom"))
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", calls)
	}
}

func TestRetryOnceDoesNotRetryDomainErrors(t *testing.T) {
	calls := 0
	_, err := RetryOnce(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) || calls != 1 {
		t.Fatalf("expected single not found call, got %v after %d calls", err, calls)
	}
}

func TestRetryOnceStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := RetryOnce(ctx, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, apperrors.Storage("get", context.Canceled)
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected one call and an error, got %v after %d calls", err, calls)
	}
}
