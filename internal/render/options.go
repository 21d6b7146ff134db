// Package render turns assistant replies, which are markdown, into styled
// terminal output and holds the color themes of the chat interface.
package render

// Options configures the markdown renderer.
type Options struct {
	// Width is the word-wrap column
	Width int

	// Style is "clinic", a glamour style name or a path to a JSON style
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
}

// DefaultOptions returns the options used when no configuration exists.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            StyleClinic,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy of o wrapping at width. Non-positive widths
// keep the current value.
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns a copy of o using style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}
