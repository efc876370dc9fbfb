// Package store persists conversation history in SQLite so project chats
// survive restarts. One row per message, keyed by project.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Message is one stored conversation entry.
type Message struct {
	ID        string
	ProjectID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// MessageStore is a SQLite-backed conversation log.
type MessageStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_project ON messages(project_id, created_at);
`

// Open opens (or creates) the store at path.
func Open(path string) (*MessageStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &MessageStore{db: db}, nil
}

// Append records one message for a project.
func (s *MessageStore) Append(ctx context.Context, projectID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, project_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), projectID, role, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// History returns the most recent limit messages for a project in
// chronological order. limit <= 0 returns everything.
func (s *MessageStore) History(ctx context.Context, projectID string, limit int) ([]Message, error) {
	// rowid preserves insertion order exactly; created_at alone can tie.
	query := `SELECT id, project_id, role, content, created_at FROM messages
		WHERE project_id = ? ORDER BY rowid DESC`
	args := []any{projectID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	// Newest-first query for the LIMIT; flip back to chronological.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Close closes the underlying database.
func (s *MessageStore) Close() error {
	return s.db.Close()
}
