package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/healthchat/internal/chat"
	"github.com/diogo/healthchat/internal/config"
	"github.com/diogo/healthchat/internal/models"
	"github.com/diogo/healthchat/internal/render"
)

// fakeStreamer replays a canned event stream
type fakeStreamer struct {
	mu       sync.Mutex
	body     string
	err      error
	received [][]models.Message
	closed   bool
}

func (f *fakeStreamer) OpenStream(_ context.Context, msgs []models.Message) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, msgs)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *fakeStreamer) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// fakeChat records RunChat calls
type fakeChat struct {
	called   bool
	relayURL string
	opts     render.Options
	ctrl     *chat.Controller
}

func (f *fakeChat) RunChat(_ context.Context, ctrl *chat.Controller, relayURL string, opts render.Options) error {
	f.called = true
	f.ctrl = ctrl
	f.relayURL = relayURL
	f.opts = opts
	return nil
}

type testEnv struct {
	deps      *Dependencies
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	streamer  *fakeStreamer
	chat      *fakeChat
	relayURLs []string
	clipboard []string
	edited    []string
}

// sseBody builds a completion stream carrying the given deltas
func sseBody(deltas ...string) string {
	var sb strings.Builder
	for _, d := range deltas {
		sb.WriteString(`data: {"choices":[{"delta":{"content":"` + d + `"}}]}` + "\n\n")
	}
	sb.WriteString("data: [DONE]\n\n")
	return sb.String()
}

// newTestEnv isolates HOME and the relay environment and returns fake
// dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	unsetEnv(t,
		config.EnvRelayURL, config.EnvPublicKey, config.EnvUpstreamAPIKey,
		config.EnvUpstreamURL, config.EnvListenAddr, render.EnvStyle,
		"HEALTHCHAT_MODEL", "HEALTHCHAT_PATH", "HEALTHCHAT_MAX_TOKENS",
		"HEALTHCHAT_TEMPERATURE", "HEALTHCHAT_LOG_LEVEL",
	)

	env := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		streamer: &fakeStreamer{},
		chat:     &fakeChat{},
	}
	env.deps = &Dependencies{
		Chat: env.chat,
		EditConfig: func(cfg config.Config, path string) error {
			env.edited = append(env.edited, path)
			return nil
		},
		NewStreamer: func(relayURL, publicKey string) (RelayStreamer, error) {
			env.relayURLs = append(env.relayURLs, relayURL)
			return env.streamer, nil
		},
		Stdin:      strings.NewReader(""),
		Stdout:     env.stdout,
		Stderr:     env.stderr,
		StdinPiped: func() bool { return false },
		IsTTY:      func() bool { return false },
		TermWidth:  func() int { return 80 },
		Clipboard: func(text string) error {
			env.clipboard = append(env.clipboard, text)
			return nil
		},
	}
	return env
}

// unsetEnv removes keys for the duration of the test
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// run executes the root command with args
func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
