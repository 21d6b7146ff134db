// Package models contains data types and constants shared by the chat client
// and the relay.
package models

// Upstream completion API defaults
const (
	EndpointChatCompletions = "https://api.openai.com/v1/chat/completions"

	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Relay defaults
const (
	DefaultRelayPath  = "/health-chat"
	DefaultListenAddr = ":8787"
	DefaultRelayURL   = "http://localhost:8787"
)

// Server-sent event framing used by the completion stream
const (
	SSEDataPrefix   = "data:"
	SSEDoneSentinel = "[DONE]"

	// DeltaContentPath is the gjson path of the incremental text in a chunk.
	DeltaContentPath = "choices.0.delta.content"
)

// CompletionRequest is the body sent to the upstream completion API.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// RelayRequest is the body accepted by the relay endpoint.
type RelayRequest struct {
	Messages []Message `json:"messages"`
}

// ErrorBody is the JSON body of every relay failure.
type ErrorBody struct {
	Error string `json:"error"`
}

// Disclaimer is shown alongside every answer.
const Disclaimer = "General health information only. Not a substitute for professional medical advice."
