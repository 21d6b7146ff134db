package models

import "strings"

// Message is a single entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a message authored by the assistant.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// IsBlank reports whether text has no visible characters.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Conversation is the ordered, in-memory list of messages of one session.
// The zero value is an empty conversation ready to use.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation seeded with msgs.
func NewConversation(msgs ...Message) *Conversation {
	c := &Conversation{}
	c.messages = append(c.messages, msgs...)
	return c
}

// Append adds msg to the end of the conversation.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the messages in order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Last returns the final message, if any.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// SetLastContent overwrites the content of the final message in place.
// It returns false when the conversation is empty.
func (c *Conversation) SetLastContent(content string) bool {
	if len(c.messages) == 0 {
		return false
	}
	c.messages[len(c.messages)-1].Content = content
	return true
}

// DropLast removes the final message and returns it.
func (c *Conversation) DropLast() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	last := c.messages[len(c.messages)-1]
	c.messages = c.messages[:len(c.messages)-1]
	return last, true
}
