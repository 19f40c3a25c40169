// Package conversation drives the turn-taking state machine at the heart
// of the assistant: it owns the transcript, sequences calls to the remote
// chat client and the audio player, and maps failures to user-visible
// state. All dependencies are narrow interfaces so the machine is
// testable without network or audio hardware.
package conversation

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
)

// initFailedText is the persistent banner shown when the session cannot
// be created. There is no recovery short of restarting the program.
const initFailedText = "Failed to initialize the chatbot. Please check your API key and restart."

// TurnSender sends one multimodal turn to the remote session and returns
// the model's text reply.
type TurnSender interface {
	SendTurn(ctx context.Context, text string, image *chat.ImagePart) (string, error)
}

// SessionStarter opens the remote chat session bound to the fixed system
// instruction. Called exactly once per run.
type SessionStarter interface {
	StartSession(ctx context.Context) (TurnSender, error)
}

// SessionStarterFunc adapts a function to the SessionStarter interface.
type SessionStarterFunc func(ctx context.Context) (TurnSender, error)

func (f SessionStarterFunc) StartSession(ctx context.Context) (TurnSender, error) {
	return f(ctx)
}

// SpeechSynthesizer renders text as raw PCM audio. A nil result means
// synthesis failed softly and playback is skipped.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) []byte
}

// Player plays PCM buffers through the local output device.
type Player interface {
	Play(pcm []byte)
	Stop()
	IsPlaying() bool
}

// Store persists transcript entries. Optional; persistence failures are
// soft and never interrupt the conversation.
type Store interface {
	AppendMessage(ctx context.Context, m chat.Message) error
	SetUserName(ctx context.Context, name string) error
}

// Deps are the controller's collaborators.
type Deps struct {
	Sessions SessionStarter
	Synth    SpeechSynthesizer
	Player   Player
	Store    Store // may be nil
	Logger   *zap.Logger
}

// Controller owns the message transcript and the turn state machine.
type Controller struct {
	deps Deps

	mu         sync.Mutex
	state      TurnState
	session    TurnSender
	transcript chat.Transcript
	userName   string
	errText    string
	fatal      bool

	updates chan struct{}
}

// New creates a controller. Call Start before submitting turns.
func New(deps Deps) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{
		deps: deps,
		// Busy until Start finishes, so early submissions are rejected.
		state:   StateBusy,
		updates: make(chan struct{}, 1),
	}
}

// Start creates the remote session and seeds the transcript with the
// fixed greeting. On failure the controller enters a permanent degraded
// state: the error banner stays and no turn is ever accepted.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.session != nil || c.fatal {
		c.mu.Unlock()
		return
	}
	c.state = StateBusy
	c.mu.Unlock()

	sess, err := c.deps.Sessions.StartSession(ctx)

	c.mu.Lock()
	if err != nil {
		c.deps.Logger.Error("session creation failed", zap.Error(err))
		c.fatal = true
		c.errText = initFailedText
		c.mu.Unlock()
		c.notify()
		return
	}

	c.session = sess
	greeting := chat.NewMessage(chat.RoleBot, chat.TextPart{Text: greetingText})
	c.transcript.Append(greeting)
	c.state = StateIdle
	c.mu.Unlock()

	c.persist(ctx, greeting)
	c.notify()
}

// Submit runs one turn of the per-turn protocol. Empty submissions and
// submissions while a turn is in flight are rejected outright: no
// transcript mutation, no remote call. The rejection is silent — the
// second submit is ignored, not queued.
func (c *Controller) Submit(ctx context.Context, text string, image *chat.ImagePart) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return
	}

	c.mu.Lock()
	if c.fatal || c.state == StateBusy {
		c.mu.Unlock()
		return
	}
	wasAwaitingName := c.state == StateAwaitingName
	hasName := c.userName != ""
	c.state = StateBusy
	c.errText = ""

	var parts []chat.Part
	if text != "" {
		parts = append(parts, chat.TextPart{Text: text})
	}
	if image != nil {
		parts = append(parts, *image)
	}
	userMsg := chat.NewMessage(chat.RoleUser, parts...)
	c.transcript.Append(userMsg)
	sess := c.session
	c.mu.Unlock()

	c.persist(ctx, userMsg)
	c.notify()

	// A new turn preempts whatever the assistant was still saying.
	c.deps.Player.Stop()

	switch {
	case wasAwaitingName:
		c.completeNameCollection(ctx, text)
	case !hasName:
		c.requestName(ctx)
	default:
		c.answer(ctx, sess, text, image)
	}
}

// completeNameCollection stores the submitted text verbatim as the user's
// name for the rest of the session and acknowledges it locally. The
// remote session is not involved in this path.
func (c *Controller) completeNameCollection(ctx context.Context, name string) {
	c.mu.Lock()
	c.userName = name
	c.mu.Unlock()

	if c.deps.Store != nil {
		if err := c.deps.Store.SetUserName(ctx, name); err != nil {
			c.deps.Logger.Warn("persisting user name", zap.Error(err))
		}
	}

	reply := nameAckText(name)
	c.appendBot(ctx, reply)
	c.speak(ctx, reply)
	c.setState(StateIdle)
}

// requestName interposes the one-shot name-collection interjection
// instead of answering. The user's original question is not replayed
// afterwards — they re-ask once named.
func (c *Controller) requestName(ctx context.Context) {
	c.appendBot(ctx, nameRequestText)
	c.speak(ctx, nameRequestText)
	c.setState(StateAwaitingName)
}

// answer is the normal path: one remote turn, reply appended, reply
// spoken. A failure surfaces the error banner and masks the gap with the
// fixed apology so the transcript never lacks a bot response.
func (c *Controller) answer(ctx context.Context, sess TurnSender, text string, image *chat.ImagePart) {
	reply, err := sess.SendTurn(ctx, text, image)
	if err != nil {
		c.deps.Logger.Error("chat turn failed", zap.Error(err))
		c.mu.Lock()
		c.errText = "Error communicating with the AI: " + err.Error()
		c.mu.Unlock()
		c.appendBot(ctx, apologyText)
		c.setState(StateIdle)
		return
	}

	c.appendBot(ctx, reply)
	c.speak(ctx, reply)
	c.setState(StateIdle)
}

func (c *Controller) speak(ctx context.Context, text string) {
	pcm := c.deps.Synth.SynthesizeSpeech(ctx, text)
	if pcm == nil {
		// Soft synthesis failure; playback is simply skipped.
		return
	}
	c.deps.Player.Play(pcm)
}

func (c *Controller) appendBot(ctx context.Context, text string) {
	msg := chat.NewMessage(chat.RoleBot, chat.TextPart{Text: text})
	c.mu.Lock()
	c.transcript.Append(msg)
	c.mu.Unlock()
	c.persist(ctx, msg)
	c.notify()
}

func (c *Controller) persist(ctx context.Context, m chat.Message) {
	if c.deps.Store == nil {
		return
	}
	if err := c.deps.Store.AppendMessage(ctx, m); err != nil {
		c.deps.Logger.Warn("persisting message", zap.Error(err))
	}
}

func (c *Controller) setState(s TurnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Messages returns a snapshot of the transcript in append order.
func (c *Controller) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

// State returns the current turn state.
func (c *Controller) State() TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// UserName returns the stored name, or empty when none was collected yet.
func (c *Controller) UserName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userName
}

// Err returns the current user-visible error text, empty when none.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

// Degraded reports whether initialization failed fatally.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal
}

// StopSpeech halts any in-progress spoken reply.
func (c *Controller) StopSpeech() {
	c.deps.Player.Stop()
}

// IsSpeaking reports whether a spoken reply is playing.
func (c *Controller) IsSpeaking() bool {
	return c.deps.Player.IsPlaying()
}

// Updates is a coalescing notification channel: it receives whenever the
// transcript, state, or error text changes.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}
