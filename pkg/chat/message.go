package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message. The wire values match the
// Gemini API roles.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "model"
)

// Message is one entry in the transcript. Messages are immutable once
// appended; a user turn carries at most one text part and one image part.
type Message struct {
	ID        string
	Role      Role
	Parts     []Part
	CreatedAt time.Time
}

// NewMessage builds a message with a fresh identifier.
func NewMessage(role Role, parts ...Part) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Parts:     parts,
		CreatedAt: time.Now(),
	}
}

// Text returns the concatenated text content of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}

// Image returns the first image part, or nil if the message has none.
func (m Message) Image() *ImagePart {
	for _, p := range m.Parts {
		if ip, ok := p.(ImagePart); ok {
			return &ip
		}
	}
	return nil
}
