package stream

import "strings"

// Accumulator collects the deltas of a single response.
type Accumulator struct {
	buf strings.Builder
}

// Append adds delta and returns the full text so far.
func (a *Accumulator) Append(delta string) string {
	a.buf.WriteString(delta)
	return a.buf.String()
}

// Text returns the accumulated text.
func (a *Accumulator) Text() string {
	return a.buf.String()
}
