// Package transcript exports the in-memory conversation of a chat session to
// a file the user asked for.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/healthchat/internal/models"
)

// Format is the file format of an export
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// maxTitleRunes bounds the title derived from the first question
const maxTitleRunes = 50

// Transcript is a snapshot of a conversation.
type Transcript struct {
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	Messages  []models.Message `json:"messages"`
}

// New snapshots msgs. Assistant messages with no content yet are skipped.
func New(msgs []models.Message, now time.Time) Transcript {
	t := Transcript{
		Title:     fmt.Sprintf("Health chat %s", now.Format("2006-01-02 15:04")),
		CreatedAt: now,
		Messages:  make([]models.Message, 0, len(msgs)),
	}

	for _, msg := range msgs {
		if msg.Role == models.RoleAssistant && msg.Content == "" {
			continue
		}
		t.Messages = append(t.Messages, msg)
	}

	for _, msg := range t.Messages {
		if msg.Role == models.RoleUser {
			t.Title = titleFrom(msg.Content)
			break
		}
	}
	return t
}

func titleFrom(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "..."
	}
	return title
}

// Markdown renders the transcript as a markdown document
func (t Transcript) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(t.Title)
	sb.WriteString("\n\n")

	sb.WriteString("**Exported:** ")
	sb.WriteString(t.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n", len(t.Messages)))
	sb.WriteString("> ")
	sb.WriteString(models.Disclaimer)
	sb.WriteString("\n\n---\n\n")

	for i, msg := range t.Messages {
		role := "You"
		if msg.Role == models.RoleAssistant {
			role = "Health Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// JSON renders the transcript as indented JSON
func (t Transcript) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Encode renders the transcript in format
func (t Transcript) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown, "":
		return []byte(t.Markdown()), nil
	case FormatJSON:
		return t.JSON()
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s", format)
	}
}

// FileName returns the default file name for an export created at t.CreatedAt
func (t Transcript) FileName(format Format) string {
	ext := ".md"
	if format == FormatJSON {
		ext = ".json"
	}
	return "healthchat-" + t.CreatedAt.Format("20060102-150405") + ext
}

// Save writes the transcript into dir and returns the file path.
func (t Transcript) Save(dir string, format Format) (string, error) {
	if len(t.Messages) == 0 {
		return "", fmt.Errorf("nothing to export")
	}

	data, err := t.Encode(format)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, t.FileName(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}
