package llm

import "context"

// LLM is the interface for language model backends.
type LLM interface {
	// Generate sends a request and returns the complete response.
	Generate(ctx context.Context, messages []Message) (*Response, error)
}

// Message represents a conversation message.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Response is the response from an LLM call.
type Response struct {
	// Content is the text response
	Content string

	// Model that served the request, as reported by the API
	Model string

	// Token counts
	InputTokens  int
	OutputTokens int

	// Latency in milliseconds
	LatencyMs int64

	// StopReason indicates why generation stopped
	StopReason StopReason
}

// StopReason indicates why the LLM stopped generating.
type StopReason string

const (
	StopReasonEnd      StopReason = "end_turn"
	StopReasonLength   StopReason = "max_tokens"
	StopReasonStop     StopReason = "stop_sequence"
	StopReasonFiltered StopReason = "content_filter"
)

// splitSystem separates system messages from the conversation. Both backends
// need this: Anthropic takes the system prompt as a top-level field, OpenAI
// wants it first.
func splitSystem(messages []Message) (system string, rest []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
