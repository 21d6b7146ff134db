package render

import (
	"os"

	"github.com/diogo/healthchat/internal/config"
)

// EnvStyle overrides the configured markdown style
const EnvStyle = "GLAMOUR_STYLE"

// OptionsFromConfig builds renderer options from the markdown section of the
// user configuration. GLAMOUR_STYLE, when set, wins over the file.
func OptionsFromConfig(md config.MarkdownConfig) Options {
	opts := DefaultOptions()

	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap

	if style := os.Getenv(EnvStyle); style != "" {
		opts.Style = style
	}
	return opts
}

// LoadOptions reads the user configuration and returns renderer options
// wrapping at width. A missing or unreadable file yields the defaults.
func LoadOptions(width int) Options {
	md := config.DefaultMarkdownConfig()
	if cfg, err := config.LoadConfig(); err == nil {
		md = cfg.Markdown
	}
	return OptionsFromConfig(md).WithWidth(width)
}
