package render

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// StyleClinic is the default markdown style: glamour's dark style with the
// headings, links and emphasis recolored to the clinic palette.
const StyleClinic = "clinic"

// MarkdownStyles lists the style names accepted in Options.Style besides
// a path to a JSON style file.
func MarkdownStyles() []string {
	return []string{StyleClinic, styles.DarkStyle, styles.LightStyle, styles.DraculaStyle, styles.NoTTYStyle, styles.AsciiStyle}
}

// IsKnownStyle reports whether name is one of MarkdownStyles.
func IsKnownStyle(name string) bool {
	for _, s := range MarkdownStyles() {
		if s == name {
			return true
		}
	}
	return false
}

func clinicStyleConfig() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig

	heading := string(ClinicTheme.Primary)
	title := string(ClinicTheme.Background)
	link := string(ClinicTheme.Secondary)
	strong := string(ClinicTheme.Text)
	quote := string(ClinicTheme.TextDim)

	cfg.Heading.Color = &heading
	cfg.H1.Color = &title
	cfg.H1.BackgroundColor = &heading
	cfg.Link.Color = &link
	cfg.LinkText.Color = &link
	cfg.Strong.Color = &strong
	cfg.BlockQuote.Color = &quote

	return cfg
}
