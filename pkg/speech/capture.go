// Package speech captures voice input: microphone audio is streamed to a
// remote recognition service and finalized utterances are delivered to a
// callback. The capability is optional — when no credential or capture
// device is available the adapter degrades to a no-op and typed input
// carries the conversation.
package speech

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config holds the recognition parameters. The locale is fixed to
// Brazilian Portuguese by default, matching the assistant's language.
type Config struct {
	// APIKey authenticates against the recognition service. Empty
	// disables voice input.
	APIKey string

	Language   string
	Model      string
	BaseURL    string
	SampleRate int
}

func (c Config) withDefaults() Config {
	if c.Language == "" {
		c.Language = "pt-BR"
	}
	if c.Model == "" {
		c.Model = "nova-2"
	}
	if c.BaseURL == "" {
		c.BaseURL = "wss://api.deepgram.com"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	return c
}

// errServerClosed marks a server-initiated stream end. In continuous mode
// the service may end the stream spontaneously; that is not a state
// change — the adapter reconnects and keeps listening. Only an explicit
// Stop call ends listening.
var errServerClosed = errors.New("recognition stream closed by server")

// Capture is the speech-to-text adapter.
type Capture struct {
	cfg          Config
	logger       *zap.Logger
	onTranscript func(string)
	available    bool

	mu        sync.Mutex
	listening bool
	stopCh    chan struct{}
}

// NewCapture builds the adapter and runs the capability check once. When
// the capability is missing the returned adapter is permanently disabled:
// Start is a no-op and the warning here is the only one ever surfaced.
func NewCapture(cfg Config, onTranscript func(string), logger *zap.Logger) *Capture {
	cfg = cfg.withDefaults()

	c := &Capture{
		cfg:          cfg,
		logger:       logger,
		onTranscript: onTranscript,
		available:    true,
	}

	if cfg.APIKey == "" {
		logger.Warn("speech recognition unavailable: no recognition API key configured; voice input disabled")
		c.available = false
		return c
	}
	if err := probeMic(); err != nil {
		logger.Warn("speech recognition unavailable; voice input disabled", zap.Error(err))
		c.available = false
	}

	return c
}

// Available reports whether voice input can be used at all.
func (c *Capture) Available() bool {
	return c.available
}

// IsListening reports whether the adapter is currently listening.
func (c *Capture) IsListening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Start begins continuous listening. It is a no-op when already listening
// or when the capability is unavailable.
func (c *Capture) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.available || c.listening {
		return
	}

	c.listening = true
	c.stopCh = make(chan struct{})
	go c.run(c.stopCh)
}

// Stop ends listening. Only this call (not a spontaneous server end)
// transitions the adapter out of the listening state.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.listening {
		return
	}
	c.listening = false
	close(c.stopCh)
}

// abort is the error path out of the listening state: recognition errors
// stop listening and are logged, but never crash the input flow.
func (c *Capture) abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.listening {
		return
	}
	c.listening = false
	close(c.stopCh)
}

func (c *Capture) run(stop chan struct{}) {
	mic, err := newMicSource(c.cfg.SampleRate)
	if err != nil {
		c.logger.Error("starting audio capture", zap.Error(err))
		c.abort()
		return
	}
	defer mic.Close()

	for {
		sess, err := dialListen(c.cfg)
		if err != nil {
			c.logger.Error("recognition connection failed", zap.Error(err))
			c.abort()
			return
		}

		err = c.pump(mic, sess, stop)
		_ = sess.Close()

		select {
		case <-stop:
			return
		default:
		}

		if errors.Is(err, errServerClosed) {
			c.logger.Debug("recognition stream ended spontaneously; reconnecting")
			continue
		}
		if err != nil {
			c.logger.Error("speech recognition error", zap.Error(err))
			c.abort()
			return
		}
	}
}

// pump runs one connection's worth of work: audio out, transcripts in.
func (c *Capture) pump(mic *micSource, sess *listenSession, stop <-chan struct{}) error {
	done := make(chan struct{})
	defer close(done)

	go sess.KeepAlive(done)

	// Closing the connection is the only way to unblock the read loop
	// when the user stops listening.
	go func() {
		select {
		case <-stop:
			_ = sess.Close()
		case <-done:
		}
	}()

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-done:
				return
			case frame := <-mic.Frames():
				if err := sess.SendAudio(frame); err != nil {
					return
				}
			}
		}
	}()

	for {
		msg, err := sess.ReadMessage()
		if err != nil {
			select {
			case <-stop:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errServerClosed
			}
			return err
		}

		if text, ok := parseTranscript(msg); ok {
			c.onTranscript(text)
		}
	}
}
