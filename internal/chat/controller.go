// Package chat holds the conversation state of the chat client and drives
// one streaming request cycle at a time.
package chat

import (
	"context"
	"errors"
	"io"

	"github.com/diogo/healthchat/internal/models"
)

// ErrCycleAborted is reported when a cycle ends without completing, for
// example because its context was cancelled.
var ErrCycleAborted = errors.New("response stream closed before completion")

// Streamer opens the relay's event stream for a conversation.
type Streamer interface {
	OpenStream(ctx context.Context, messages []models.Message) (io.ReadCloser, error)
}

// Controller owns the conversation and the busy flag.
//
// It is not safe for concurrent use; updates from a Cycle must be applied
// from a single goroutine, in the order they are received.
type Controller struct {
	conv     *models.Conversation
	streamer Streamer

	busy        bool
	placeholder bool
	lastErr     error
}

// NewController creates a Controller with an empty conversation.
func NewController(streamer Streamer) *Controller {
	return &Controller{
		conv:     models.NewConversation(),
		streamer: streamer,
	}
}

// Submit appends a user message and starts a request cycle. It is a no-op
// returning false when text is blank or a cycle is already in flight.
func (c *Controller) Submit(text string) (*Cycle, bool) {
	if models.IsBlank(text) || c.busy {
		return nil, false
	}

	c.conv.Append(models.NewUserMessage(text))
	c.busy = true
	c.placeholder = false
	c.lastErr = nil

	return newCycle(c.streamer, c.conv.Messages()), true
}

// SelectTopic submits a pre-set topic prompt.
func (c *Controller) SelectTopic(prompt string) (*Cycle, bool) {
	return c.Submit(prompt)
}

// Apply folds one cycle update into the conversation.
func (c *Controller) Apply(u Update) {
	switch u.Kind {
	case UpdateStarted:
		c.conv.Append(models.NewAssistantMessage(""))
		c.placeholder = true

	case UpdateDelta:
		if c.placeholder {
			c.conv.SetLastContent(u.Content)
		}

	case UpdateDone:
		c.busy = false
		c.placeholder = false

	case UpdateFailed:
		// Roll back the assistant placeholder so the user can resubmit
		if c.placeholder {
			if last, ok := c.conv.Last(); ok && last.Role == models.RoleAssistant {
				c.conv.DropLast()
			}
		}
		c.busy = false
		c.placeholder = false
		c.lastErr = u.Err
	}
}

// Abort fails the in-flight cycle, if any, with ErrCycleAborted.
func (c *Controller) Abort() {
	if c.busy {
		c.Apply(Update{Kind: UpdateFailed, Err: ErrCycleAborted})
	}
}

// RunCycle runs cy to completion, applying every update and passing it to
// observe (which may be nil). It returns the error of a failed cycle.
func (c *Controller) RunCycle(ctx context.Context, cy *Cycle, observe func(Update)) error {
	go cy.Run(ctx)

	for u := range cy.Updates() {
		c.Apply(u)
		if observe != nil {
			observe(u)
		}
	}

	c.Abort()
	return c.lastErr
}

// Busy reports whether a cycle is in flight.
func (c *Controller) Busy() bool {
	return c.busy
}

// AwaitingReply reports whether a cycle is in flight and no reply text has
// started yet.
func (c *Controller) AwaitingReply() bool {
	if !c.busy {
		return false
	}
	last, ok := c.conv.Last()
	return ok && (last.Role == models.RoleUser || last.Content == "")
}

// Messages returns a copy of the conversation.
func (c *Controller) Messages() []models.Message {
	return c.conv.Messages()
}

// Len returns the number of messages in the conversation.
func (c *Controller) Len() int {
	return c.conv.Len()
}

// LastError returns the error of the most recent failed cycle, cleared by
// the next successful Submit.
func (c *Controller) LastError() error {
	return c.lastErr
}

// LastReply returns the content of the most recent assistant message.
func (c *Controller) LastReply() (string, bool) {
	msgs := c.conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant && msgs[i].Content != "" {
			return msgs[i].Content, true
		}
	}
	return "", false
}
