// Package sqlite keeps the device-local session restart hints.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"

	_ "modernc.org/sqlite"
)

// HintCache stores at most one hint per actor. Hints are informational and
// never restore a validated session.
type HintCache struct {
	db *sql.DB
}

// Open initializes the database, creating parent directories as needed. An
// empty path or ":memory:" opens an in-memory database.
func Open(path string) (*HintCache, error) {
	dsn := "file::memory:"
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &HintCache{db: db}, nil
}

func (h *HintCache) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *HintCache) InitSchema(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS session_hints (
		actor_id TEXT PRIMARY KEY,
		primary_key TEXT NOT NULL,
		secondary_key TEXT NOT NULL,
		display_name TEXT NOT NULL,
		validated_at TEXT NOT NULL
	);`
	if _, err := h.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (h *HintCache) Save(ctx context.Context, hint domain.SessionHint) error {
	const op = "sqlite.HintCache.Save"

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO session_hints (actor_id, primary_key, secondary_key, display_name, validated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(actor_id) DO UPDATE SET
			primary_key = excluded.primary_key,
			secondary_key = excluded.secondary_key,
			display_name = excluded.display_name,
			validated_at = excluded.validated_at`,
		hint.ActorID,
		hint.TargetKey.PrimaryKey,
		hint.TargetKey.SecondaryKey,
		hint.DisplayName,
		hint.ValidatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (h *HintCache) Load(ctx context.Context, actorID string) (*domain.SessionHint, error) {
	const op = "sqlite.HintCache.Load"

	var (
		hint        = domain.SessionHint{ActorID: actorID}
		validatedAt string
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT primary_key, secondary_key, display_name, validated_at
		FROM session_hints WHERE actor_id = ?`, actorID,
	).Scan(&hint.TargetKey.PrimaryKey, &hint.TargetKey.SecondaryKey, &hint.DisplayName, &validatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", op, actorID, e.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hint.ValidatedAt, err = time.Parse(time.RFC3339Nano, validatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: parse validated_at: %w", op, err)
	}
	return &hint, nil
}

func (h *HintCache) Clear(ctx context.Context, actorID string) error {
	const op = "sqlite.HintCache.Clear"

	if _, err := h.db.ExecContext(ctx, `DELETE FROM session_hints WHERE actor_id = ?`, actorID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
