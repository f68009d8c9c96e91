// Package migrate applies embedded SQL migrations at most once per file.
//
// Migration files use `-- +migrate Up` / `-- +migrate Down` markers; only the
// Up section runs. Applied files are recorded in the schema_migrations table
// so re-running Apply is a no-op.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Table is the bookkeeping table that records applied migration files.
const Table = "schema_migrations"

// Target is the database a migration set is applied to.
type Target interface {
	// EnsureTable creates the bookkeeping table when missing.
	EnsureTable(ctx context.Context) error
	// IsApplied reports whether name is already recorded.
	IsApplied(ctx context.Context, name string) (bool, error)
	// ApplyAndRecord runs upSQL and records name in one transaction.
	ApplyAndRecord(ctx context.Context, name, upSQL string, appliedAt time.Time) error
}

// Apply executes migrations from root in lexical file order.
func Apply(ctx context.Context, target Target, migrationFS fs.FS, root string) error {
	if target == nil {
		return fmt.Errorf("migration target is required")
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if err := target.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		name := file
		if root != "." {
			name = path.Join(root, file)
		}
		applied, err := target.IsApplied(ctx, name)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(root, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		upSQL := ExtractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}
		if err := target.ApplyAndRecord(ctx, name, upSQL, time.Now().UTC()); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	upIdx := strings.Index(content, up)
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, down)
	if downIdx == -1 || downIdx < upIdx {
		return content[upIdx+len(up):]
	}
	return content[upIdx+len(up) : downIdx]
}

// IsAlreadyExistsError reports whether this error indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

// SQLTarget applies migrations through database/sql with `?` placeholders.
type SQLTarget struct {
	DB *sql.DB
}

// EnsureTable creates the bookkeeping table.
func (t SQLTarget) EnsureTable(ctx context.Context) error {
	_, err := t.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+Table+` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`)
	return err
}

// IsApplied reports whether name is already recorded.
func (t SQLTarget) IsApplied(ctx context.Context, name string) (bool, error) {
	var found int
	err := t.DB.QueryRowContext(ctx, "SELECT 1 FROM "+Table+" WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ApplyAndRecord runs upSQL and records name atomically.
func (t SQLTarget) ApplyAndRecord(ctx context.Context, name, upSQL string, appliedAt time.Time) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upSQL); err != nil && !IsAlreadyExistsError(err) {
		return fmt.Errorf("exec: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO "+Table+" (name, applied_at) VALUES (?, ?)",
		name, appliedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}
