// Package gemini is the client for the hosted Gemini services: one
// persistent chat session bound to the fixed Quantum persona, and a
// separate speech-synthesis endpoint for spoken replies.
package gemini

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	// DefaultChatModel answers conversation turns.
	DefaultChatModel = "gemini-2.5-flash"

	// DefaultTTSModel renders replies as speech.
	DefaultTTSModel = "gemini-2.5-flash-preview-tts"

	// DefaultVoice is the prebuilt voice preset used for spoken replies.
	DefaultVoice = "Puck"
)

// Config is the remote client configuration.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// ChatModel overrides the conversation model.
	ChatModel string

	// TTSModel overrides the speech-synthesis model.
	TTSModel string

	// Voice overrides the prebuilt voice preset.
	Voice string
}

func (c Config) withDefaults() Config {
	if c.ChatModel == "" {
		c.ChatModel = DefaultChatModel
	}
	if c.TTSModel == "" {
		c.TTSModel = DefaultTTSModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	return c
}

// Client talks to the Gemini API.
type Client struct {
	cfg    Config
	ai     *genai.Client
	logger *zap.Logger
}

// NewClient creates a Gemini client. It fails with an InitializationError
// when the credential is absent or the underlying client cannot be built.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	cfg = cfg.withDefaults()

	if cfg.APIKey == "" {
		return nil, &InitializationError{Err: ErrMissingAPIKey}
	}

	ai, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &InitializationError{Err: err}
	}

	return &Client{
		cfg:    cfg,
		ai:     ai,
		logger: logger,
	}, nil
}

// StartSession opens one chat session bound to the fixed system
// instruction. The session persists for the whole run; it is never
// recreated except by restarting the program.
func (c *Client) StartSession(ctx context.Context) (*Session, error) {
	chat, err := c.ai.Chats.Create(ctx, c.cfg.ChatModel, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, &InitializationError{Err: err}
	}

	c.logger.Info("chat session created",
		zap.String("model", c.cfg.ChatModel),
		zap.String("prompt_version", promptVersion),
	)

	return newSession(chat, c.logger), nil
}
