package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
)

// SessionStore appends transcript entries for a single session. It
// satisfies the controller's store dependency.
type SessionStore struct {
	db        *sql.DB
	sessionID string

	mu  sync.Mutex
	seq int
}

// AppendMessage persists one transcript entry. Image bytes are not
// stored; only the MIME type is kept so the history viewer can note the
// attachment.
func (s *SessionStore) AppendMessage(ctx context.Context, m chat.Message) error {
	var mime string
	if img := m.Image(); img != nil {
		mime = img.MIMEType
	}

	s.mu.Lock()
	seq := s.seq
	s.seq++
	s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, seq, role, content, image_mime, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, s.sessionID, seq, string(m.Role), m.Text(), mime, m.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// SetUserName records the collected name on the session row.
func (s *SessionStore) SetUserName(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET user_name = ? WHERE id = ?`,
		name, s.sessionID,
	)
	if err != nil {
		return fmt.Errorf("updating session name: %w", err)
	}
	return nil
}

// ID returns the session's identifier.
func (s *SessionStore) ID() string {
	return s.sessionID
}
