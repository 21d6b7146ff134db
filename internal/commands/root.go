// Package commands provides the CLI commands of healthchat.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/diogo/healthchat/internal/tui"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by the root command and its children
type rootOptions struct {
	relayURL string
	envFile  string
	verbose  bool

	file   string
	output string
	raw    bool
	copy   bool
}

// NewRootCmd builds the command tree around deps.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "healthchat [question]",
		Short: "Public health assistant for the terminal",
		Long: `healthchat is a conversational public health assistant. Answers are
streamed from an LLM through the healthchat relay, which adds the public
health instruction and keeps the upstream API key off the client.

The assistant gives general health information only. It is not a substitute
for professional medical advice.

Examples:
  healthchat chat                           Start interactive chat
  healthchat relay                          Run the relay endpoint
  healthchat "How does the flu spread?"     Ask a single question
  healthchat -f question.md                 Read the question from a file
  cat question.md | healthchat              Read the question from stdin
  healthchat "Hello" -o answer.md           Save the answer to a file`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "healthchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, opts, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return runAsk(cmd.Context(), deps, opts, prompt)
		},
	}

	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)
	cmd.SetIn(deps.Stdin)

	cmd.PersistentFlags().StringVar(&opts.relayURL, "relay-url", "", "Base URL of the healthchat relay")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Read environment values from this file instead of .env")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Print request details to stderr")
	addAskFlags(cmd, opts)
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		newAskCmd(deps, opts),
		newChatCmd(deps, opts),
		newRelayCmd(deps, opts),
		newTopicsCmd(deps),
		newConfigCmd(deps),
	)

	return cmd
}

func addAskFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the question from file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the answer to file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the answer as plain text while it streams")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the answer to the clipboard")
}

// readPrompt picks the question from the file flag, piped stdin or the first
// argument, in that order. ok is false when there is no input at all.
func readPrompt(deps *Dependencies, opts *rootOptions, args []string) (string, bool, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", false, errors.Wrap(err, "failed to read file")
		}
		return string(data), true, nil
	}

	if deps.StdinPiped != nil && deps.StdinPiped() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, errors.Wrap(err, "failed to read stdin")
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	deps := NewDependencies()
	err := NewRootCmd(deps).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(deps.Stderr, tui.FormatError(err))
		os.Exit(1)
	}
}
