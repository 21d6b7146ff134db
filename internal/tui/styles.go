// Package tui provides the terminal chat interface of healthchat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/diogo/healthchat/internal/errors"
	"github.com/diogo/healthchat/internal/render"
)

// Color variables, refreshed from the active theme
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables, rebuilt when the theme changes
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle  lipgloss.Style
	noticeStyle lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
	disclaimerStyle   lipgloss.Style

	topicStyle         lipgloss.Style
	topicSelectedStyle lipgloss.Style
	topicKeyStyle      lipgloss.Style
)

// pulseColors drive the thinking indicator
var pulseColors = []lipgloss.Color{
	lipgloss.Color("#1b6f7a"),
	lipgloss.Color("#24909e"),
	lipgloss.Color("#3fb6c6"),
	lipgloss.Color("#6fd3df"),
	lipgloss.Color("#3fb6c6"),
	lipgloss.Color("#24909e"),
}

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles from render.GetTUITheme.
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorPrimary)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Align(lipgloss.Center)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Align(lipgloss.Center)

	welcomeIconStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true).
		Align(lipgloss.Center)

	disclaimerStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Italic(true).
		Align(lipgloss.Center)

	topicStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Background(colorSurface).
		Padding(0, 1)

	topicSelectedStyle = lipgloss.NewStyle().
		Foreground(colorSurface).
		Background(colorPrimary).
		Bold(true).
		Padding(0, 1)

	topicKeyStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)
}

// FormatError renders err for terminal output with whatever detail the
// typed errors carry and a hint for the common failure kinds.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if body := responseExcerpt(errors.GetResponseBody(err)); body != "" {
		sb.WriteString(dimStyle.Render("\n  Response: " + body))
	}

	switch {
	case errors.IsConfigError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: set the missing value in .env or the environment"))
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check that the relay is running and reachable"))
	case errors.IsAPIError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: the relay rejected the request; see its logs for details"))
	}

	return sb.String()
}

const maxExcerpt = 120

// responseExcerpt returns the first line of a response body that did not
// carry a JSON error field, truncated to maxExcerpt runes.
func responseExcerpt(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if gjson.Valid(body) && gjson.Get(body, "error").Type == gjson.String {
		return ""
	}
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = strings.TrimSpace(body[:i])
	}
	if r := []rune(body); len(r) > maxExcerpt {
		body = string(r[:maxExcerpt]) + "..."
	}
	return body
}
