// Package history persists conversation transcripts to a local SQLite
// database so past sessions can be reviewed after the program exits.
package history

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

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	user_name  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	seq        INTEGER NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	image_mime TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
`

// DB is a handle to the history database.
type DB struct {
	db *sql.DB
}

// Open creates or opens the history database at path, creating parent
// directories and the schema as needed.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// BeginSession registers a new session row and returns a writer scoped to
// it.
func (d *DB) BeginSession(ctx context.Context) (*SessionStore, error) {
	id := uuid.NewString()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session row: %w", err)
	}
	return &SessionStore{db: d.db, sessionID: id}, nil
}

// SessionInfo summarizes one stored session.
type SessionInfo struct {
	ID        string
	StartedAt time.Time
	UserName  string
	Messages  int
}

// Sessions lists stored sessions, newest first.
func (d *DB) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.user_name, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var (
			info    SessionInfo
			started int64
		)
		if err := rows.Scan(&info.ID, &started, &info.UserName, &info.Messages); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		info.StartedAt = time.Unix(started, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}

// StoredMessage is one persisted transcript entry.
type StoredMessage struct {
	Role      string
	Content   string
	ImageMIME string
	CreatedAt time.Time
}

// Messages returns a session's transcript in append order.
func (d *DB) Messages(ctx context.Context, sessionID string) ([]StoredMessage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT role, content, image_mime, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []StoredMessage
	for rows.Next() {
		var (
			m       StoredMessage
			created int64
		)
		if err := rows.Scan(&m.Role, &m.Content, &m.ImageMIME, &created); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		m.CreatedAt = time.Unix(created, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}
