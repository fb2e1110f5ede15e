// Package history keeps an append-only SQLite log of completed practice
// sessions and serves the aggregates displayed in the stats view.
//
// The log complements the JSON profile: the profile is the small document
// read by other components at startup, while the history database holds
// the full per-session detail for trends and recent-score displays.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Entry is one completed practice session as stored in the log.
type Entry struct {
	ID         int64
	StartedAt  time.Time
	Phrase     string
	Transcript string
	Score      int
	Duration   time.Duration
}

// Stats aggregates the whole log for the quick-stats display.
type Stats struct {
	Count   int
	Best    int
	Average float64
}

// Log wraps SQLite access for the session history.
type Log struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path and applies
// migrations.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return l, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Ping verifies the database is still reachable.
func (l *Log) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

func (l *Log) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			phrase TEXT NOT NULL,
			transcript TEXT NOT NULL,
			score INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Insert appends a completed session and returns its row id.
func (l *Log) Insert(ctx context.Context, e Entry) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO sessions (started_at, phrase, transcript, score, duration_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		e.StartedAt.Format(time.RFC3339Nano),
		e.Phrase,
		e.Transcript,
		e.Score,
		e.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: insert session: %w", err)
	}
	return id, nil
}

// Stats returns the log-wide aggregates. An empty log yields zeroes.
func (l *Log) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var best, avg sql.NullFloat64
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(score), AVG(score) FROM sessions`,
	).Scan(&s.Count, &best, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("history: stats: %w", err)
	}
	if best.Valid {
		s.Best = int(best.Float64)
	}
	if avg.Valid {
		s.Average = avg.Float64
	}
	return s, nil
}

// Recent returns the newest n sessions, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, started_at, phrase, transcript, score, duration_ms
		 FROM sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt string
		var durationMs int64
		if err := rows.Scan(&e.ID, &startedAt, &e.Phrase, &e.Transcript, &e.Score, &durationMs); err != nil {
			return nil, fmt.Errorf("history: recent: %w", err)
		}
		e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("history: recent: parse started_at: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	return entries, nil
}
