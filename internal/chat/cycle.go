package chat

import (
	"context"
	"errors"
	"io"

	apierrors "github.com/diogo/healthchat/internal/errors"
	"github.com/diogo/healthchat/internal/models"
	"github.com/diogo/healthchat/internal/stream"
)

// UpdateKind identifies a step of a request cycle.
type UpdateKind int

const (
	// UpdateStarted: the relay accepted the request and the reply begins.
	UpdateStarted UpdateKind = iota
	// UpdateDelta: a fragment arrived; Content holds the full reply so far.
	UpdateDelta
	// UpdateDone: the stream ended normally.
	UpdateDone
	// UpdateFailed: the request or the stream failed; Err holds the cause.
	UpdateFailed
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateStarted:
		return "started"
	case UpdateDelta:
		return "delta"
	case UpdateDone:
		return "done"
	case UpdateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Update is one state change emitted by a Cycle.
type Update struct {
	Kind    UpdateKind
	Delta   string
	Content string
	Err     error
}

// readBufferSize is the size of a single read from the response body
const readBufferSize = 4096

// updateBuffer lets the reader run slightly ahead of the consumer
const updateBuffer = 32

// Cycle is one request/response exchange. Its accumulator lives only for the
// duration of the cycle.
type Cycle struct {
	streamer Streamer
	messages []models.Message
	updates  chan Update
	acc      stream.Accumulator
}

func newCycle(streamer Streamer, messages []models.Message) *Cycle {
	return &Cycle{
		streamer: streamer,
		messages: messages,
		updates:  make(chan Update, updateBuffer),
	}
}

// Messages returns the conversation snapshot sent by this cycle.
func (cy *Cycle) Messages() []models.Message {
	out := make([]models.Message, len(cy.messages))
	copy(out, cy.messages)
	return out
}

// Updates returns the channel on which Run publishes updates in order. It is
// closed when Run returns.
func (cy *Cycle) Updates() <-chan Update {
	return cy.updates
}

// Run opens the stream and reads it to the end. It emits UpdateStarted, zero
// or more UpdateDelta and then exactly one of UpdateDone or UpdateFailed,
// unless ctx is cancelled first.
func (cy *Cycle) Run(ctx context.Context) {
	defer close(cy.updates)

	if cy.streamer == nil {
		cy.send(ctx, Update{Kind: UpdateFailed, Err: errors.New("no relay client configured")})
		return
	}

	body, err := cy.streamer.OpenStream(ctx, cy.messages)
	if err != nil {
		cy.send(ctx, Update{Kind: UpdateFailed, Err: err})
		return
	}
	defer body.Close()

	if !cy.send(ctx, Update{Kind: UpdateStarted}) {
		return
	}

	dec := stream.NewDecoder()
	buf := make([]byte, readBufferSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if !cy.emitDeltas(ctx, dec.Feed(buf[:n])) {
				return
			}
		}

		if errors.Is(err, io.EOF) {
			if !cy.emitDeltas(ctx, dec.Flush()) {
				return
			}
			cy.send(ctx, Update{Kind: UpdateDone, Content: cy.acc.Text()})
			return
		}
		if err != nil {
			cy.send(ctx, Update{Kind: UpdateFailed, Err: apierrors.NewNetworkError("read stream", err)})
			return
		}
	}
}

func (cy *Cycle) emitDeltas(ctx context.Context, deltas []string) bool {
	for _, delta := range deltas {
		full := cy.acc.Append(delta)
		if !cy.send(ctx, Update{Kind: UpdateDelta, Delta: delta, Content: full}) {
			return false
		}
	}
	return true
}

func (cy *Cycle) send(ctx context.Context, u Update) bool {
	select {
	case cy.updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
