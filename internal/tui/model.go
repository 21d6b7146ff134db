package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/healthchat/internal/chat"
	"github.com/diogo/healthchat/internal/models"
	"github.com/diogo/healthchat/internal/render"
	"github.com/diogo/healthchat/internal/transcript"
)

const (
	// failureNotice is shown when a request cycle fails
	failureNotice = "Failed to get response. Please try again."

	noticeTimeout = 4 * time.Second
	pulseInterval = 120 * time.Millisecond
)

// Message types for the TUI
type (
	streamUpdateMsg struct {
		update  chat.Update
		updates <-chan chat.Update
	}
	streamClosedMsg struct{}

	clearNoticeMsg struct {
		id int
	}
	clipboardMsg struct {
		err error
	}
	exportMsg struct {
		path string
		err  error
	}
	pulseTickMsg time.Time
)

// Model is the bubbletea model of the chat screen. The conversation and the
// busy flag live in the chat.Controller; the model only renders them.
type Model struct {
	ctx      context.Context
	ctrl     *chat.Controller
	relayURL string

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready       bool
	topicCursor int
	pulseFrame  int

	notice     string
	noticeErr  error
	noticeID   int
	renderOpts render.Options
	copyToClip func(string) error
	exportDir  string
	now        func() time.Time
	width      int
	height     int
}

// NewChatModel creates the chat model. ctx bounds every request cycle.
func NewChatModel(ctx context.Context, ctrl *chat.Controller, relayURL string) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a public health question..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Pulse
	s.Style = loadingStyle

	return Model{
		ctx:        ctx,
		ctrl:       ctrl,
		relayURL:   relayURL,
		textarea:   ta,
		spinner:    s,
		renderOpts: render.DefaultOptions(),
		copyToClip: clipboard.WriteAll,
		exportDir:  ".",
		now:        time.Now,
	}
}

// WithRenderOptions returns a copy of m rendering replies with opts.
func (m Model) WithRenderOptions(opts render.Options) Model {
	m.renderOpts = opts
	return m
}

// WithExportDir returns a copy of m saving transcripts into dir.
func (m Model) WithExportDir(dir string) Model {
	m.exportDir = dir
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// waitForUpdate blocks until the cycle publishes its next update.
func waitForUpdate(updates <-chan chat.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return streamClosedMsg{}
		}
		return streamUpdateMsg{update: u, updates: updates}
	}
}

// runCycle reads the response stream in the background. Its result arrives
// through waitForUpdate, so the command itself yields no message.
func runCycle(ctx context.Context, cy *chat.Cycle) tea.Cmd {
	return func() tea.Msg {
		cy.Run(ctx)
		return nil
	}
}

func pulseTick() tea.Cmd {
	return tea.Tick(pulseInterval, func(t time.Time) tea.Msg {
		return pulseTickMsg(t)
	})
}

func clearNoticeAfter(id int) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case streamUpdateMsg:
		m.ctrl.Apply(msg.update)
		cmds = append(cmds, waitForUpdate(msg.updates))
		if msg.update.Kind == chat.UpdateFailed {
			cmds = append(cmds, m.showNotice(failureNotice, msg.update.Err))
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case streamClosedMsg:
		if m.ctrl.Busy() {
			m.ctrl.Abort()
			cmds = append(cmds, m.showNotice(failureNotice, m.ctrl.LastError()))
		}
		m.updateViewport()

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
			m.noticeErr = nil
		}

	case clipboardMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showNotice("Could not copy to clipboard", msg.err))
		} else {
			cmds = append(cmds, m.showNotice("Copied reply to clipboard", nil))
		}

	case exportMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showNotice("Could not save transcript", msg.err))
		} else {
			cmds = append(cmds, m.showNotice("Saved transcript to "+msg.path, nil))
		}

	case spinner.TickMsg:
		if m.ctrl.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case pulseTickMsg:
		if m.ctrl.Busy() {
			m.pulseFrame++
			cmds = append(cmds, pulseTick())
		}
	}

	// Only key presses reach the textarea, and not while a reply streams
	if _, ok := msg.(tea.KeyMsg); ok && !m.ctrl.Busy() {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 5
	statusHeight := 2
	vpHeight := height - headerHeight - inputHeight - statusHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.renderOpts = m.renderOpts.WithWidth(contentWidth - 12)
	m.updateViewport()
}

// handleKey processes keys with a fixed meaning. handled is false when the
// key should fall through to the textarea.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true

	case "esc":
		// No cancellation of an in-flight reply
		if m.ctrl.Busy() {
			return m, nil, true
		}
		return m, tea.Quit, true

	case "ctrl+y":
		reply, ok := m.ctrl.LastReply()
		if !ok {
			return m, m.showNotice("Nothing to copy yet", nil), true
		}
		copyFn := m.copyToClip
		return m, func() tea.Msg { return clipboardMsg{err: copyFn(reply)} }, true

	case "ctrl+s":
		if m.ctrl.Busy() {
			return m, nil, true
		}
		tr := transcript.New(m.ctrl.Messages(), m.now())
		dir := m.exportDir
		return m, func() tea.Msg {
			path, err := tr.Save(dir, transcript.FormatMarkdown)
			return exportMsg{path: path, err: err}
		}, true

	case "enter":
		input := strings.TrimSpace(m.textarea.Value())
		if input == "/exit" || input == "/quit" {
			return m, tea.Quit, true
		}
		if input == "" && m.showingTopics() {
			topic := models.HealthTopics[m.topicCursor]
			next, cmd := m.submit(topic.Prompt)
			return next, cmd, true
		}
		next, cmd := m.submit(input)
		return next, cmd, true

	case "tab", "right", "down":
		if m.showingTopics() {
			m.topicCursor = (m.topicCursor + 1) % len(models.HealthTopics)
			return m, nil, true
		}

	case "shift+tab", "left", "up":
		if m.showingTopics() {
			m.topicCursor = (m.topicCursor + len(models.HealthTopics) - 1) % len(models.HealthTopics)
			return m, nil, true
		}

	case "1", "2", "3", "4":
		if m.showingTopics() {
			topic, ok := models.TopicByIndex(int(msg.String()[0] - '0'))
			if ok {
				next, cmd := m.submit(topic.Prompt)
				return next, cmd, true
			}
		}
	}
	return m, nil, false
}

// showingTopics reports whether the welcome screen with its topic buttons is
// visible and the input is empty.
func (m Model) showingTopics() bool {
	return m.ctrl.Len() == 0 && !m.ctrl.Busy() && strings.TrimSpace(m.textarea.Value()) == ""
}

// submit hands text to the controller and starts the request cycle.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	cy, ok := m.ctrl.Submit(text)
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.noticeErr = nil
	m.pulseFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		runCycle(m.ctx, cy),
		waitForUpdate(cy.Updates()),
		m.spinner.Tick,
		pulseTick(),
	)
}

func (m *Model) showNotice(text string, err error) tea.Cmd {
	m.noticeID++
	m.notice = text
	m.noticeErr = err
	return clearNoticeAfter(m.noticeID)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✚ Public Health Assistant"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.relayURL),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	var body string
	if m.ctrl.Len() == 0 {
		body = m.renderWelcome()
	} else {
		body = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(body))

	var input string
	if m.ctrl.Busy() {
		input = m.renderThinking()
	} else {
		input = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	if m.notice != "" {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4

	var topics []string
	for i, t := range models.HealthTopics {
		style := topicStyle
		if i == m.topicCursor {
			style = topicSelectedStyle
		}
		topics = append(topics, topicKeyStyle.Render(fmt.Sprintf("%d ", i+1))+style.Render(t.Label))
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✚"),
		"",
		welcomeTitleStyle.Width(width).Render("Public Health Assistant"),
		welcomeStyle.Width(width).Render("Ask about diseases, symptoms, prevention and healthy habits"),
		"",
		lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(topics, "   ")),
		"",
		disclaimerStyle.Width(width).Render(models.Disclaimer),
	)

	top := (m.viewport.Height - lipgloss.Height(content)) / 2
	if top < 0 {
		top = 0
	}
	return strings.Repeat("\n", top) + content
}

// renderThinking shows a pulsing indicator while no reply text has arrived
// and a quieter one while the reply streams.
func (m Model) renderThinking() string {
	if !m.ctrl.AwaitingReply() {
		return m.spinner.View() + subtitleStyle.Render(" Receiving reply...")
	}

	var dots strings.Builder
	for i := 0; i < 3; i++ {
		c := pulseColors[(m.pulseFrame+i)%len(pulseColors)]
		dots.WriteString(lipgloss.NewStyle().Foreground(c).Render("●"))
	}
	text := lipgloss.NewStyle().Foreground(colorText).Render(" Assistant is thinking ")
	return m.spinner.View() + text + dots.String()
}

func (m Model) renderNotice() string {
	if m.noticeErr == nil {
		return noticeStyle.Render("  " + m.notice)
	}
	return errorStyle.Render("  ⚠ "+m.notice) + "\n" + hintStyle.Render("    "+m.noticeErr.Error())
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy reply"},
		{"Ctrl+S", "Save"},
		{"↑↓", "Scroll"},
		{"Esc", "Quit"},
	}
	if m.showingTopics() {
		shortcuts[3] = struct {
			key  string
			desc string
		}{"1-4/Tab", "Topics"}
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport re-renders the conversation into the viewport. The empty
// assistant placeholder is skipped; the thinking indicator stands in for it.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for _, msg := range m.ctrl.Messages() {
		if msg.Role == models.RoleAssistant && msg.Content == "" {
			continue
		}
		if content.Len() > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("● You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		} else {
			content.WriteString(assistantLabelStyle.Render("✚ Assistant") + "\n")
			rendered := render.Reply(msg.Content, m.renderOpts)
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI and blocks until the user quits. Quitting
// cancels any in-flight request.
func RunChat(ctx context.Context, ctrl *chat.Controller, relayURL string, opts render.Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewChatModel(ctx, ctrl, relayURL).WithRenderOptions(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	return err
}
