// Package sqlite is the contact message store backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zachkp/portfolio/internal/contact"
)

// timestamps are stored as fixed-width UTC text so they compare lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements contact.Store.
type Store struct {
	db *sql.DB
}

// Stats summarizes the inbox.
type Stats struct {
	Total    int64 `json:"total" yaml:"total"`
	Today    int64 `json:"today" yaml:"today"`
	ThisWeek int64 `json:"this_week" yaml:"this_week"`
}

// Open connects to the database named by a DATABASE_URL value and applies the
// schema. "sqlite://path" and plain paths or "file:" DSNs are accepted.
func Open(databaseURL string) (*Store, error) {
	dsn := strings.TrimPrefix(databaseURL, "sqlite://")
	if dsn == "" {
		return nil, fmt.Errorf("empty database url")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps writes serialized and makes :memory: usable
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_created_at ON contacts(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateContact inserts one message and returns it with its generated ID.
func (s *Store) CreateContact(ctx context.Context, msg contact.Message) (contact.Message, error) {
	msg.CreatedAt = msg.CreatedAt.UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt.Format(timeLayout))
	if err != nil {
		return contact.Message{}, fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return contact.Message{}, fmt.Errorf("failed to read contact id: %w", err)
	}
	msg.ID = id
	return msg, nil
}

// ListContacts returns the newest messages first.
func (s *Store) ListContacts(ctx context.Context, limit int) ([]contact.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, subject, message, created_at
		FROM contacts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var out []contact.Message
	for rows.Next() {
		var (
			msg       contact.Message
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		msg.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("contact %d: bad created_at %q: %w", msg.ID, createdAt, err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return out, nil
}

// Stats counts all messages and those received since the start of today and
// within the last seven days, relative to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)

	stats := &Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM contacts
	`, startOfDay.Format(timeLayout), weekAgo.Format(timeLayout)).Scan(&stats.Total, &stats.Today, &stats.ThisWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}
	return stats, nil
}

// DeleteOlderThan removes messages created before cutoff and reports how many
// were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE created_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old contacts: %w", err)
	}
	return result.RowsAffected()
}
