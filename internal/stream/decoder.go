// Package stream decodes chat-completion server-sent event streams into text
// deltas.
package stream

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/diogo/healthchat/internal/models"
)

// Decoder turns raw stream bytes into content deltas.
//
// Bytes after the last newline of a chunk are kept until the next Feed, so a
// JSON payload split across two reads is reassembled instead of dropped.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	pending []byte
}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes one chunk and returns the deltas of every complete line in it,
// in order.
func (d *Decoder) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	d.pending = append(d.pending, chunk...)

	var deltas []string
	for {
		idx := bytes.IndexByte(d.pending, '\n')
		if idx < 0 {
			break
		}
		line := string(d.pending[:idx])
		d.pending = d.pending[idx+1:]
		if delta, ok := d.parseLine(line); ok {
			deltas = append(deltas, delta)
		}
	}

	// Release the backing array once fully consumed
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return deltas
}

// Flush decodes a trailing line that arrived without a newline. Call it once
// the stream reports end of input.
func (d *Decoder) Flush() []string {
	if len(d.pending) == 0 {
		return nil
	}
	line := string(d.pending)
	d.pending = nil
	if delta, ok := d.parseLine(line); ok {
		return []string{delta}
	}
	return nil
}

// parseLine extracts the delta of one event line. Lines without the data
// prefix, the sentinel, malformed JSON and chunks without text are skipped.
func (d *Decoder) parseLine(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")

	payload, ok := DataPayload(line)
	if !ok {
		return "", false
	}
	if payload == models.SSEDoneSentinel {
		return "", false
	}
	return ExtractDelta(payload)
}

// DataPayload returns the payload of an SSE data line. A single space after
// the colon is part of the framing and is removed.
func DataPayload(line string) (string, bool) {
	if !strings.HasPrefix(line, models.SSEDataPrefix) {
		return "", false
	}
	payload := strings.TrimPrefix(line, models.SSEDataPrefix)
	return strings.TrimPrefix(payload, " "), true
}

// ExtractDelta reads the first choice's delta content from a chunk payload.
func ExtractDelta(payload string) (string, bool) {
	if !gjson.Valid(payload) {
		return "", false
	}
	content := gjson.Get(payload, models.DeltaContentPath)
	if content.Type != gjson.String || content.Str == "" {
		return "", false
	}
	return content.Str, true
}
