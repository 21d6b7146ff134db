package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/healthchat/internal/api"
	"github.com/diogo/healthchat/internal/chat"
	"github.com/diogo/healthchat/internal/config"
	"github.com/diogo/healthchat/internal/render"
	"github.com/diogo/healthchat/internal/tui"
)

// ChatRunner runs the interactive chat screen.
type ChatRunner interface {
	RunChat(ctx context.Context, ctrl *chat.Controller, relayURL string, opts render.Options) error
}

// RelayStreamer is a chat.Streamer holding connections that must be
// released when the command ends.
type RelayStreamer interface {
	chat.Streamer
	Close()
}

// Dependencies holds the external dependencies of the commands so tests can
// replace the terminal, the clipboard and the relay connection.
type Dependencies struct {
	Chat ChatRunner

	// EditConfig runs the interactive settings editor.
	EditConfig func(cfg config.Config, configPath string) error

	// NewStreamer connects to the relay at relayURL.
	NewStreamer func(relayURL, publicKey string) (RelayStreamer, error)

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether input is being piped in
	StdinPiped func() bool
	// IsTTY reports whether Stdout is a terminal
	IsTTY func() bool
	// TermWidth returns the width of Stdout, or 0 when unknown
	TermWidth func() int

	Clipboard func(text string) error
}

// DefaultTUI is the production ChatRunner.
type DefaultTUI struct{}

// RunChat runs the bubbletea chat program.
func (DefaultTUI) RunChat(ctx context.Context, ctrl *chat.Controller, relayURL string, opts render.Options) error {
	return tui.RunChat(ctx, ctrl, relayURL, opts)
}

// NewDependencies returns the production dependencies.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Chat:       DefaultTUI{},
		EditConfig: tui.RunConfig,
		NewStreamer: func(relayURL, publicKey string) (RelayStreamer, error) {
			return api.NewRelayClient(relayURL, api.WithPublicKey(publicKey))
		},
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		StdinPiped: stdinPiped,
		IsTTY:      isStdoutTTY,
		TermWidth:  getTerminalWidth,
		Clipboard:  clipboard.WriteAll,
	}
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

// getTerminalWidth returns the terminal width or 0
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
