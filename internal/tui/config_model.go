package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/healthchat/internal/config"
	"github.com/diogo/healthchat/internal/render"
)

// configView is the current screen of the config menu
type configView int

const (
	viewMain configView = iota
	viewStyleSelect
	viewThemeSelect
)

// Menu item indices for the main view
const (
	menuVerbose = iota
	menuCopyToClipboard
	menuMarkdownStyle
	menuTUITheme
	menuExit
	menuItemCount
)

const feedbackTimeout = 2 * time.Second

// feedbackClearMsg clears the feedback line
type feedbackClearMsg struct{}

// SaveFunc persists the configuration.
type SaveFunc func(config.Config) error

// ConfigModel is the interactive settings editor.
type ConfigModel struct {
	config     config.Config
	configPath string
	save       SaveFunc

	view        configView
	cursor      int
	styleCursor int
	themeCursor int

	feedback string
	failed   bool

	width  int
	height int
	ready  bool
}

// NewConfigModel creates the editor for cfg, stored at configPath by save.
func NewConfigModel(cfg config.Config, configPath string, save SaveFunc) ConfigModel {
	if save == nil {
		save = config.SaveConfig
	}
	return ConfigModel{
		config:      cfg,
		configPath:  configPath,
		save:        save,
		styleCursor: indexOf(render.MarkdownStyles(), cfg.Markdown.Style),
		themeCursor: indexOf(render.TUIThemeNames(), cfg.TUITheme),
	}
}

func indexOf(items []string, value string) int {
	for i, item := range items {
		if item == value {
			return i
		}
	}
	return 0
}

// Config returns the configuration as edited so far.
func (m ConfigModel) Config() config.Config {
	return m.config
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

func clearFeedback() tea.Cmd {
	return tea.Tick(feedbackTimeout, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""
		m.failed = false

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.view != viewMain {
				m.view = viewMain
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// moveCursor moves the cursor of the current view, wrapping around
func (m *ConfigModel) moveCursor(delta int) {
	wrap := func(v, n int) int { return ((v+delta)%n + n) % n }

	switch m.view {
	case viewMain:
		m.cursor = wrap(m.cursor, menuItemCount)
	case viewStyleSelect:
		m.styleCursor = wrap(m.styleCursor, len(render.MarkdownStyles()))
	case viewThemeSelect:
		m.themeCursor = wrap(m.themeCursor, len(render.TUIThemeNames()))
	}
}

// handleSelect applies the item under the cursor
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewStyleSelect:
		m.config.Markdown.Style = render.MarkdownStyles()[m.styleCursor]
		m.view = viewMain
		return m.persist("Markdown style set to " + m.config.Markdown.Style)

	case viewThemeSelect:
		name := render.TUIThemeNames()[m.themeCursor]
		m.config.TUITheme = name
		render.SetTUITheme(name)
		UpdateTheme()
		m.view = viewMain
		return m.persist("TUI theme set to " + name)
	}

	switch m.cursor {
	case menuVerbose:
		m.config.Verbose = !m.config.Verbose
		return m.persist("Verbose output " + enabledWord(m.config.Verbose))
	case menuCopyToClipboard:
		m.config.CopyToClipboard = !m.config.CopyToClipboard
		return m.persist("Copy to clipboard " + enabledWord(m.config.CopyToClipboard))
	case menuMarkdownStyle:
		m.view = viewStyleSelect
	case menuTUITheme:
		m.view = viewThemeSelect
	case menuExit:
		return m, tea.Quit
	}
	return m, nil
}

// persist saves the config and sets the feedback line
func (m ConfigModel) persist(success string) (tea.Model, tea.Cmd) {
	if err := m.save(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
		m.failed = true
	} else {
		m.feedback = success
		m.failed = false
	}
	return m, clearFeedback()
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// View renders the TUI
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	header := headerStyle.Width(contentWidth).Render(titleStyle.Render("⚙ Configuration"))

	paths := lipgloss.JoinVertical(lipgloss.Left,
		assistantLabelStyle.Render("Files"),
		fmt.Sprintf("   Config: %s", subtitleStyle.Render(m.configPath)),
		fmt.Sprintf("   Relay:  %s", subtitleStyle.Render(m.config.RelayURL)),
	)

	var body string
	switch m.view {
	case viewStyleSelect:
		body = m.renderChoices("Markdown Style", render.MarkdownStyles(), m.styleCursor, m.config.Markdown.Style)
	case viewThemeSelect:
		body = m.renderChoices("TUI Theme", render.TUIThemeNames(), m.themeCursor, m.config.TUITheme)
	default:
		body = m.renderMainMenu()
	}

	sections := []string{
		header,
		messagesAreaStyle.Width(contentWidth).Render(paths),
		messagesAreaStyle.Width(contentWidth).Render(body),
	}

	if m.feedback != "" {
		style, mark := noticeStyle, "✓ "
		if m.failed {
			style, mark = errorStyle, "✗ "
		}
		sections = append(sections, style.Render(mark+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMainMenu renders the settings list
func (m ConfigModel) renderMainMenu() string {
	rows := []struct {
		label string
		value string
	}{
		{"Verbose Output", m.renderBoolValue(m.config.Verbose)},
		{"Copy to Clipboard", m.renderBoolValue(m.config.CopyToClipboard)},
		{"Markdown Style", topicKeyStyle.Render(m.config.Markdown.Style)},
		{"TUI Theme", topicKeyStyle.Render(m.config.TUITheme)},
	}

	items := []string{assistantLabelStyle.Render("Settings"), ""}
	for i, row := range rows {
		items = append(items, m.menuLine(i, fmt.Sprintf("%-20s", row.label))+row.value)
	}
	items = append(items, "", m.menuLine(menuExit, "Exit"))

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// menuLine renders one main menu label with the cursor marker
func (m ConfigModel) menuLine(index int, label string) string {
	if m.cursor == index {
		return topicKeyStyle.Render("▸ ") + inputLabelStyle.Render(label)
	}
	return "  " + subtitleStyle.Render(label)
}

// renderChoices renders a selection sub-menu
func (m ConfigModel) renderChoices(title string, names []string, cursor int, current string) string {
	items := []string{assistantLabelStyle.Render("Select " + title), ""}
	for i, name := range names {
		line := "  " + subtitleStyle.Render(name)
		if i == cursor {
			line = topicKeyStyle.Render("▸ ") + inputLabelStyle.Render(name)
		}
		if name == current {
			line += noticeStyle.Render(" (current)")
		}
		items = append(items, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// renderBoolValue renders a boolean value with appropriate styling
func (m ConfigModel) renderBoolValue(value bool) string {
	if value {
		return noticeStyle.Render("enabled")
	}
	return hintStyle.Render("disabled")
}

// renderStatusBar renders the bottom status bar
func (m ConfigModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.view != viewMain {
		back = "Back"
	}
	shortcuts := [][2]string{{"↑↓", "Navigate"}, {"Enter", "Select"}, {"Esc", back}}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s[0])+statusDescStyle.Render(" "+s[1]))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunConfig starts the config editor for cfg.
func RunConfig(cfg config.Config, configPath string) error {
	if render.SetTUITheme(cfg.TUITheme) {
		UpdateTheme()
	}

	p := tea.NewProgram(
		NewConfigModel(cfg, configPath, config.SaveConfig),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
