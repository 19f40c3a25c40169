// Package tui renders the conversation as an interactive terminal chat
// view: a scrollable transcript, a text input, and a status bar showing
// the turn, listening, and playback state.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sabedoriaquantica/quantum/pkg/chat"
	"github.com/sabedoriaquantica/quantum/pkg/conversation"
)

// Voice is the voice-input surface the view toggles. A permanently
// unavailable implementation is fine; the toggle key then shows a notice.
type Voice interface {
	Start()
	Stop()
	IsListening() bool
	Available() bool
}

type (
	updateMsg     struct{}
	turnDoneMsg   struct{}
	transcriptMsg string
)

// Model is the bubbletea model for the chat view.
type Model struct {
	ctx         context.Context
	ctrl        *conversation.Controller
	voice       Voice
	transcripts <-chan string
	logger      *zap.Logger

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool

	notice       string
	pendingImage *chat.ImagePart
	quitting     bool
}

// NewModel builds the chat view around an already-constructed controller.
// Recognized utterances arriving on transcripts are appended to the input
// buffer; the user submits them explicitly.
func NewModel(ctx context.Context, ctrl *conversation.Controller, voice Voice, transcripts <-chan string, logger *zap.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = "Digite sua mensagem..."
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		voice:       voice,
		transcripts: transcripts,
		logger:      logger,
		input:       ta,
		spinner:     sp,
		width:       120,
		height:      30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.startCmd(),
		waitForUpdate(m.ctrl.Updates()),
		waitForTranscript(m.transcripts),
	)
}

// startCmd creates the remote session off the UI goroutine so the view
// stays responsive while the greeting loads.
func (m Model) startCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.Start(ctx)
		return updateMsg{}
	}
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return updateMsg{}
	}
}

func waitForTranscript(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return transcriptMsg(<-ch)
	}
}

// appendUtterance merges a recognized utterance into what the user has
// already typed, the way dictation accumulates.
func appendUtterance(existing, utterance string) string {
	if existing == "" {
		return utterance
	}
	return existing + " " + utterance
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refresh()
		return m, nil

	case updateMsg:
		m.refresh()
		return m, waitForUpdate(m.ctrl.Updates())

	case turnDoneMsg:
		m.refresh()
		return m, nil

	case transcriptMsg:
		m.input.SetValue(appendUtterance(m.input.Value(), string(msg)))
		return m, waitForTranscript(m.transcripts)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.voice.Stop()
		m.ctrl.StopSpeech()
		return m, tea.Quit

	case "ctrl+s":
		m.ctrl.StopSpeech()
		return m, nil

	case "ctrl+l":
		if !m.voice.Available() {
			m.notice = "Entrada de voz indisponível neste dispositivo."
			return m, nil
		}
		if m.voice.IsListening() {
			m.voice.Stop()
		} else {
			m.voice.Start()
		}
		return m, nil

	case "enter":
		return m.submit()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles the enter key: the /image command attaches a file to
// the next turn, anything else is sent as a turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	if path, ok := strings.CutPrefix(value, "/image "); ok {
		return m.attachImage(strings.TrimSpace(path))
	}

	if value == "" && m.pendingImage == nil {
		return m, nil
	}

	image := m.pendingImage
	m.pendingImage = nil
	m.notice = ""
	m.input.Reset()

	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		ctrl.Submit(ctx, value, image)
		return turnDoneMsg{}
	}
}

func (m Model) attachImage(path string) (tea.Model, tea.Cmd) {
	part, err := chat.LoadImagePart(path)
	if err != nil {
		m.logger.Warn("rejecting image attachment", zap.String("path", path), zap.Error(err))
		m.notice = "Arquivo de imagem inválido: " + path
		return m, nil
	}

	m.pendingImage = part
	m.notice = "Imagem anexada: " + path
	m.input.Reset()
	return m, nil
}

func (m *Model) resize() {
	m.input.SetWidth(m.width - 4)

	vpHeight := m.height - 7
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.width-4),
	)
	if err != nil {
		m.logger.Warn("creating markdown renderer", zap.Error(err))
		m.renderer = nil
	} else {
		m.renderer = renderer
	}
}

// refresh re-renders the transcript into the viewport and keeps it
// pinned to the latest message.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
