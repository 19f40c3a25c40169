package historycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sabedoriaquantica/quantum/pkg/config"
	"github.com/sabedoriaquantica/quantum/pkg/history"
	"github.com/sabedoriaquantica/quantum/pkg/logger"
)

const historyLongDesc string = `Browse saved conversation transcripts.

Without arguments, lists all stored sessions. With a session ID,
prints that session's full transcript.

Examples:
  quantum history
  quantum history 2f1c9a3e-8b5d-4f7a-9c1e-0d6b4a2e8f13
  quantum history --db /tmp/history.db`

const historyShortDesc string = "Browse saved conversation transcripts"

type historyCommander struct {
	dbPath string
	debug  bool
	logger *zap.Logger
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No TUI here, so logs go straight to stderr.
			cmder.logger = logger.NewLogger(cmder.debug)
			defer cmder.logger.Sync()

			if len(args) == 1 {
				return cmder.show(cmd.Context(), cmd, args[0])
			}
			return cmder.list(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to the history database")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *historyCommander) open(ctx context.Context) (*history.DB, error) {
	path := c.dbPath
	if path == "" {
		path = config.DefaultHistoryPath()
	}
	c.logger.Debug("opening history database", zap.String("path", path))

	db, err := history.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("could not open history database %s: %w", path, err)
	}
	return db, nil
}

func (c *historyCommander) list(ctx context.Context, cmd *cobra.Command) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := db.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("could not list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions.")
		return nil
	}

	for _, s := range sessions {
		name := s.UserName
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-12s  %d messages\n",
			s.ID, s.StartedAt.Format("2006-01-02 15:04"), name, s.Messages)
	}
	return nil
}

func (c *historyCommander) show(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	messages, err := db.Messages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("could not load session %s: %w", sessionID, err)
	}

	if len(messages) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No messages in session %s.\n", sessionID)
		return nil
	}

	for _, m := range messages {
		label := "user"
		if m.Role == "model" {
			label = "quantum"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n",
			m.CreatedAt.Format("15:04:05"), label, m.Content)
		if m.ImageMIME != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "    (image attachment, %s)\n", m.ImageMIME)
		}
	}
	return nil
}
