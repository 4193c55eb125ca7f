// Package store handles local SQLite persistence of settings and history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typerank/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const usernameKey = "username"

// Store wraps SQLite access for device-local data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY,
			played_at TEXT NOT NULL,
			score INTEGER NOT NULL,
			cpm INTEGER NOT NULL,
			accuracy REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_played_at ON history(played_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Username returns the remembered username, or "" when none is stored.
func (s *Store) Username(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, usernameKey).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// SetUsername remembers the username for the next ranking submission.
func (s *Store) SetUsername(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		usernameKey, name)
	return err
}

// AppendHistory logs one competitive result.
func (s *Store) AppendHistory(ctx context.Context, entry model.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (played_at, score, cpm, accuracy) VALUES (?, ?, ?, ?)`,
		entry.Date.UTC().Format(time.RFC3339Nano),
		entry.Score,
		entry.CPM,
		entry.Accuracy,
	)
	return err
}

// ListHistory returns logged results oldest first. A positive last keeps
// only the most recent entries.
func (s *Store) ListHistory(ctx context.Context, last int) ([]model.HistoryEntry, error) {
	query := `SELECT played_at, score, cpm, accuracy FROM history ORDER BY played_at ASC, id ASC`
	args := []any{}
	if last > 0 {
		query = `SELECT played_at, score, cpm, accuracy FROM (
			SELECT id, played_at, score, cpm, accuracy FROM history
			ORDER BY played_at DESC, id DESC
			LIMIT ?
		) ORDER BY played_at ASC, id ASC`
		args = append(args, last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var playedAt string
		if err := rows.Scan(&playedAt, &entry.Score, &entry.CPM, &entry.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, playedAt)
		if err != nil {
			return nil, err
		}
		entry.Date = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
