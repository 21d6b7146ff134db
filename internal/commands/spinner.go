package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/healthchat/internal/render"
)

// spinnerInterval is the time between animation frames
const spinnerInterval = 80 * time.Millisecond

var spinnerChars = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// spinner draws an animated status line while a reply streams in
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// setMessage replaces the text next to the spinner
func (s *spinner) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// render draws the current animation frame. Callers hold s.mu.
func (s *spinner) render() {
	theme := render.GetTUITheme()
	gradient := []lipgloss.Color{theme.Primary, theme.Secondary, theme.Accent, theme.Secondary}

	spinColor := gradient[s.frame%len(gradient)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(spinnerChars[s.frame%len(spinnerChars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(gradient[(s.frame+i)%len(gradient)]).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(theme.TextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(theme.Text).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows a success line
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	theme := render.GetTUITheme()
	checkmark := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(theme.Accent).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and clears its line
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}
