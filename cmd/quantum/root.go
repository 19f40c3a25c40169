package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	historycmder "github.com/sabedoriaquantica/quantum/cmd/quantum/history"
	"github.com/sabedoriaquantica/quantum/pkg/audio"
	"github.com/sabedoriaquantica/quantum/pkg/config"
	"github.com/sabedoriaquantica/quantum/pkg/conversation"
	"github.com/sabedoriaquantica/quantum/pkg/gemini"
	"github.com/sabedoriaquantica/quantum/pkg/history"
	"github.com/sabedoriaquantica/quantum/pkg/logger"
	"github.com/sabedoriaquantica/quantum/pkg/speech"
	"github.com/sabedoriaquantica/quantum/tui"
)

const rootLongDesc string = `Quantum is the conversational assistant for the Sabedoria Quântica
website, running as a terminal chat client.

It holds one continuous Gemini chat session per run, speaks its
replies aloud, accepts typed text, attached images, and (when a
microphone and recognition key are available) voice input.

Configuration is read from a TOML file; the GEMINI_API_KEY and
DEEPGRAM_API_KEY environment variables override the file.

Examples:
  quantum
  quantum --config ./quantum.toml --debug
  quantum history`

const rootShortDesc string = "Conversational assistant for Sabedoria Quântica"

type rootCommander struct {
	configPath string
	logPath    string
	debug      bool
}

func NewRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:   "quantum",
		Short: rootShortDesc,
		Long:  rootLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&cmder.configPath, "config", "", "Path to the TOML config file")
	cmd.Flags().StringVar(&cmder.logPath, "log-file", "", "Path to the log file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(historycmder.NewHistoryCmd())

	return cmd
}

func (c *rootCommander) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cfg.Debug {
		c.debug = true
	}

	logPath := c.logPath
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}

	// The terminal belongs to the chat view, so logs go to a file.
	log, err := logger.NewFileLogger(logPath, c.debug)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	defer log.Sync()

	log.Info("quantum starting",
		zap.String("log_file", logPath),
		zap.Bool("debug", c.debug),
	)

	player := audio.NewPlayer(audio.Config{}, log)
	defer player.Close()

	starter, synth := c.buildGemini(ctx, cfg, log)

	store := c.buildStore(ctx, cfg, log)
	if store != nil {
		defer store.close()
	}

	ctrl := conversation.New(conversation.Deps{
		Sessions: starter,
		Synth:    synth,
		Player:   player,
		Store:    store.sessionStore(),
		Logger:   log,
	})

	// Finalized utterances land in the input buffer, not in the turn
	// pipeline: the user reviews, edits, and submits them like typed text.
	transcripts := make(chan string, 16)
	capture := speech.NewCapture(speech.Config{
		APIKey:   cfg.Speech.APIKey,
		Language: cfg.Speech.Language,
		Model:    cfg.Speech.Model,
	}, func(transcript string) {
		select {
		case transcripts <- transcript:
		default:
		}
	}, log)
	defer capture.Stop()

	model := tui.NewModel(ctx, ctrl, capture, transcripts, log)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat view failed: %w", err)
	}

	log.Info("quantum exiting")
	return nil
}

// buildGemini wires the remote client. A client that cannot be built is
// not fatal here: the returned starter reports the error so the chat
// view opens in its degraded state instead of the process dying.
func (c *rootCommander) buildGemini(ctx context.Context, cfg config.Config, log *zap.Logger) (conversation.SessionStarter, conversation.SpeechSynthesizer) {
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:    cfg.Gemini.APIKey,
		ChatModel: cfg.Gemini.ChatModel,
		TTSModel:  cfg.Gemini.TTSModel,
		Voice:     cfg.Gemini.Voice,
	}, log)
	if err != nil {
		log.Error("could not create gemini client", zap.Error(err))
		starter := conversation.SessionStarterFunc(func(context.Context) (conversation.TurnSender, error) {
			return nil, err
		})
		return starter, silentSynth{}
	}

	starter := conversation.SessionStarterFunc(func(ctx context.Context) (conversation.TurnSender, error) {
		return client.StartSession(ctx)
	})

	if !cfg.Audio.Enabled {
		log.Info("spoken replies disabled by configuration")
		return starter, silentSynth{}
	}
	return starter, client
}

// historyHandle bundles the database with its per-run session writer so
// both can be torn down together.
type historyHandle struct {
	db      *history.DB
	session *history.SessionStore
}

func (h *historyHandle) close() {
	_ = h.db.Close()
}

// sessionStore returns the controller-facing store, nil-safe on a nil
// handle.
func (h *historyHandle) sessionStore() conversation.Store {
	if h == nil {
		return nil
	}
	return h.session
}

// buildStore opens transcript persistence. Failures disable persistence
// for the run rather than aborting it.
func (c *rootCommander) buildStore(ctx context.Context, cfg config.Config, log *zap.Logger) *historyHandle {
	if !cfg.History.Enabled {
		return nil
	}

	db, err := history.Open(ctx, cfg.HistoryPath())
	if err != nil {
		log.Warn("transcript persistence disabled", zap.Error(err))
		return nil
	}

	session, err := db.BeginSession(ctx)
	if err != nil {
		log.Warn("transcript persistence disabled", zap.Error(err))
		_ = db.Close()
		return nil
	}

	log.Info("transcript persistence enabled",
		zap.String("session_id", session.ID()),
		zap.String("db", cfg.HistoryPath()),
	)
	return &historyHandle{db: db, session: session}
}

// silentSynth skips speech synthesis entirely.
type silentSynth struct{}

func (silentSynth) SynthesizeSpeech(context.Context, string) []byte { return nil }
