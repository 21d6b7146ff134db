package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/diogo/healthchat/internal/chat"
	"github.com/diogo/healthchat/internal/models"
	"github.com/diogo/healthchat/internal/render"
)

// ErrEmptyPrompt is returned when the question is blank
var ErrEmptyPrompt = errors.New("question is empty")

// bubbleMargin is the horizontal space taken by the reply bubble frame
const bubbleMargin = 6

func newAskCmd(deps *Dependencies, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Long: `Ask a single question and stream the answer.

On a terminal the answer is rendered as markdown once it is complete. When the
output is piped, --raw is set or --output is given, the plain text is written
as it arrives.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, ok, err := readPrompt(deps, opts, args)
			if err != nil {
				return err
			}
			if !ok {
				return ErrEmptyPrompt
			}
			return runAsk(cmd.Context(), deps, opts, prompt)
		},
	}
	addAskFlags(cmd, opts)
	return cmd
}

// runAsk sends prompt as a one-message conversation and writes the reply
func runAsk(ctx context.Context, deps *Dependencies, opts *rootOptions, prompt string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	prompt = strings.TrimSpace(prompt)

	sess, err := loadSession(opts)
	if err != nil {
		return err
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
	cy, ok := ctrl.Submit(prompt)
	if !ok {
		return ErrEmptyPrompt
	}

	decorated := opts.output == "" && !opts.raw && deps.IsTTY != nil && deps.IsTTY()
	streaming := opts.output == "" && !decorated

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Asking the health assistant")
		spin.start()
	}

	err = ctrl.RunCycle(ctx, cy, func(u chat.Update) {
		if u.Kind != chat.UpdateDelta {
			return
		}
		switch {
		case spin != nil:
			spin.setMessage(fmt.Sprintf("Receiving answer (%d chars)", len(u.Content)))
		case streaming:
			fmt.Fprint(deps.Stdout, u.Delta)
		}
	})
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}

	reply, _ := ctrl.LastReply()

	switch {
	case opts.output != "":
		if err := os.WriteFile(opts.output, []byte(reply), 0o644); err != nil {
			return errors.Wrap(err, "failed to write output file")
		}
		fmt.Fprintf(deps.Stderr, "Answer saved to %s\n", opts.output)

	case decorated:
		spin.stopWithSuccess("Done")
		fmt.Fprintln(deps.Stdout, renderReply(reply, sess, deps))

	default:
		if !strings.HasSuffix(reply, "\n") {
			fmt.Fprintln(deps.Stdout)
		}
	}

	if opts.copy || sess.cfg.CopyToClipboard {
		if err := deps.Clipboard(reply); err != nil {
			fmt.Fprintf(deps.Stderr, "Warning: failed to copy to clipboard: %v\n", err)
		} else if sess.verbose(opts) {
			fmt.Fprintln(deps.Stderr, "Answer copied to clipboard")
		}
	}

	return nil
}

// renderReply draws the reply as markdown inside an assistant bubble
func renderReply(reply string, sess *session, deps *Dependencies) string {
	width := 0
	if deps.TermWidth != nil {
		width = deps.TermWidth()
	}
	if width <= 0 {
		width = render.DefaultOptions().Width + bubbleMargin
	}

	opts := render.OptionsFromConfig(sess.cfg.Markdown).WithWidth(width - bubbleMargin)
	body := render.Reply(reply, opts)

	theme := render.GetTUITheme()
	label := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("✚ Health Assistant")
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1).
		Render(body)

	disclaimer := lipgloss.NewStyle().Foreground(theme.Warning).Italic(true).Render(models.Disclaimer)
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble, disclaimer)
}
