// Package journal keeps a local SQLite record of every dispatched message.
// It is an audit trail only: nothing in it is ever re-sent.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Entry is one dispatch attempt.
type Entry struct {
	ID          string
	Transport   string
	Channel     string
	Username    string
	Text        string
	Attachments int
	Status      Status
	Error       string
	Duration    time.Duration
	CreatedAt   time.Time
}

// Store is a SQLite-backed delivery journal.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create journal directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open journal: %w", err)
	}

	// Set connection pool (single connection for SQLite)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := RunMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal migration failed: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts e, filling in ID and CreatedAt when they are zero.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (id, transport, channel, username, text, attachments, status, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Transport, e.Channel, e.Username, e.Text, e.Attachments,
		string(e.Status), e.Error, e.Duration.Milliseconds(), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transport, channel, username, text, attachments, status, error, duration_ms, created_at
		 FROM deliveries ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			status     string
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.Transport, &e.Channel, &e.Username, &e.Text,
			&e.Attachments, &status, &e.Error, &durationMS, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = Status(status)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns the number of entries per status.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM deliveries GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}
