// Package ranking persists best scores per username and reconciles submissions.
package ranking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typerank/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when no record exists for a username.
var ErrNotFound = errors.New("score record not found")

// Store wraps SQLite access for the ranking table.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ranking database and applies migrations.
// Write transactions take the database lock up front so concurrent
// submissions for the same username are serialised.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	dsn := "file:" + path + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			score INTEGER NOT NULL,
			cpm INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			created_at TEXT NOT NULL,
			last_played_at TEXT NOT NULL
		);`,
		// Older databases may hold several rows per username. Keep only the
		// best one before the unique index is created.
		`DELETE FROM scores WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY username ORDER BY score DESC, id ASC) AS rn
				FROM scores
			) WHERE rn = 1
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_scores_username ON scores(username);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores metrics for username if they beat the stored score, or only
// touches last_played_at otherwise. It reports whether the stored score was
// created or raised.
func (s *Store) Record(ctx context.Context, username string, m model.ScoreMetrics, at time.Time) (highScore bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var prior int
	found := true
	err = tx.QueryRowContext(ctx, `SELECT score FROM scores WHERE username = ?`, username).Scan(&prior)
	if errors.Is(err, sql.ErrNoRows) {
		found = false
		err = nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read prior score: %w", err)
	}

	ts := at.UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO scores (username, score, cpm, accuracy, created_at, last_played_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
			cpm = CASE WHEN excluded.score > scores.score THEN excluded.cpm ELSE scores.cpm END,
			accuracy = CASE WHEN excluded.score > scores.score THEN excluded.accuracy ELSE scores.accuracy END,
			created_at = CASE WHEN excluded.score > scores.score THEN excluded.created_at ELSE scores.created_at END,
			score = MAX(scores.score, excluded.score),
			last_played_at = excluded.last_played_at`,
		username, m.Score, m.CPM, m.Accuracy, ts, ts,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert score: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit score: %w", err)
	}
	return !found || m.Score > prior, nil
}

// Get returns the stored record for username.
func (s *Store) Get(ctx context.Context, username string) (model.ScoreRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT username, score, cpm, accuracy, created_at, last_played_at
		 FROM scores WHERE username = ?`, username)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScoreRecord{}, ErrNotFound
	}
	return rec, err
}

// Rank returns one plus the number of stored scores strictly above score.
func (s *Store) Rank(ctx context.Context, score int) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores WHERE score > ?`, score).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return count + 1, nil
}

// Top returns up to limit records by descending score.
func (s *Store) Top(ctx context.Context, limit int) ([]model.ScoreRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, score, cpm, accuracy, created_at, last_played_at
		 FROM scores
		 ORDER BY score DESC, created_at ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ScoreRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.ScoreRecord, error) {
	var rec model.ScoreRecord
	var createdAt, lastPlayedAt string
	if err := sc.Scan(&rec.Username, &rec.Score, &rec.CPM, &rec.Accuracy, &createdAt, &lastPlayedAt); err != nil {
		return model.ScoreRecord{}, err
	}
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.ScoreRecord{}, err
	}
	if rec.LastPlayedAt, err = time.Parse(time.RFC3339Nano, lastPlayedAt); err != nil {
		return model.ScoreRecord{}, err
	}
	return rec, nil
}
