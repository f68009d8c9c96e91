// Package backend opens the feedback store named by a connection string.
package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/postgres"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/sqlite"
)

// Kind identifies a storage engine.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// Target is a parsed connection string.
type Target struct {
	Kind Kind
	// Location is a filesystem path for SQLite and the full URL for PostgreSQL.
	Location string
}

// Parse selects the engine for databaseURL:
//
//	postgres://... or postgresql://...  PostgreSQL
//	sqlite://path, sqlite:path, file:path or a bare path  SQLite
func Parse(databaseURL string) (Target, error) {
	value := strings.TrimSpace(databaseURL)
	if value == "" {
		return Target{}, fmt.Errorf("database url is required")
	}
	lower := strings.ToLower(value)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Target{Kind: KindPostgres, Location: value}, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqliteTarget(value[len("sqlite://"):])
	case strings.HasPrefix(lower, "sqlite:"):
		return sqliteTarget(value[len("sqlite:"):])
	case strings.HasPrefix(lower, "file:"):
		return sqliteTarget(value[len("file:"):])
	case strings.Contains(value, "://"):
		return Target{}, fmt.Errorf("unsupported database url scheme in %q", value)
	default:
		return sqliteTarget(value)
	}
}

func sqliteTarget(path string) (Target, error) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if strings.TrimSpace(path) == "" {
		return Target{}, fmt.Errorf("sqlite path is required")
	}
	return Target{Kind: KindSQLite, Location: filepath.Clean(path)}, nil
}

// Open parses databaseURL and opens the matching store. A nil clock uses
// time.Now.
func Open(ctx context.Context, databaseURL string, clock func() time.Time) (storage.Store, error) {
	target, err := Parse(databaseURL)
	if err != nil {
		return nil, err
	}
	switch target.Kind {
	case KindPostgres:
		store, err := postgres.Open(ctx, target.Location, postgres.WithClock(clock))
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		if dir := filepath.Dir(target.Location); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := sqlite.Open(target.Location, sqlite.WithClock(clock))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	}
}
