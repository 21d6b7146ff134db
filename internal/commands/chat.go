package commands

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/diogo/healthchat/internal/chat"
	"github.com/diogo/healthchat/internal/render"
	"github.com/diogo/healthchat/internal/tui"
)

func newChatCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the public health assistant.

Pick one of the starter topics or type a question. The conversation is kept
for the lifetime of the session only. Press Esc or Ctrl+C to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), deps, opts)
		},
	}
}

func runChat(ctx context.Context, deps *Dependencies, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sess, err := loadSession(opts)
	if err != nil {
		return err
	}

	if name := sess.cfg.TUITheme; name != "" {
		if render.SetTUITheme(name) {
			tui.UpdateTheme()
		} else {
			fmt.Fprintf(deps.Stderr, "Warning: unknown theme '%s', using %s\n", name, render.GetTUITheme().Name)
		}
	}

	streamer, err := deps.NewStreamer(sess.relayURL, sess.env.PublicKey)
	if err != nil {
		return errors.Wrap(err, "failed to create relay client")
	}
	defer streamer.Close()

	if sess.verbose(opts) {
		fmt.Fprintf(deps.Stderr, "relay: %s\n", sess.relayURL)
	}

	ctrl := chat.NewController(streamer)
	return deps.Chat.RunChat(ctx, ctrl, sess.relayURL, render.OptionsFromConfig(sess.cfg.Markdown))
}
