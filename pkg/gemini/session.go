package gemini

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
)

// Session is an opaque handle to one remote chat context. The server keeps
// the conversation history; callers only send new turns.
type Session struct {
	id     string
	chat   *genai.Chat
	logger *zap.Logger
}

func newSession(c *genai.Chat, logger *zap.Logger) *Session {
	return &Session{
		id:     uuid.NewString(),
		chat:   c,
		logger: logger,
	}
}

// ID returns the local identifier for this session.
func (s *Session) ID() string {
	return s.id
}

// SendTurn sends one multimodal turn and returns the model's text reply.
// Failures are wrapped in a CommunicationError; there is no automatic
// retry — the caller decides.
func (s *Session) SendTurn(ctx context.Context, text string, image *chat.ImagePart) (string, error) {
	parts := buildTurnParts(text, image)
	if len(parts) == 0 {
		return "", nil
	}

	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", &CommunicationError{Err: err}
	}

	reply := resp.Text()
	s.logger.Debug("turn completed",
		zap.String("session", s.id),
		zap.Int("reply_len", len(reply)),
	)

	return reply, nil
}

// buildTurnParts assembles the outbound payload for one turn. The image
// part, when present, is ordered before the text part: models ground
// better on the image when it precedes the question.
func buildTurnParts(text string, image *chat.ImagePart) []genai.Part {
	var parts []genai.Part

	if image != nil {
		parts = append(parts, genai.Part{
			InlineData: &genai.Blob{
				MIMEType: image.MIMEType,
				Data:     image.Data,
			},
		})
	}

	if strings.TrimSpace(text) != "" {
		parts = append(parts, genai.Part{Text: text})
	}

	return parts
}
