package serve

import (
	"time"

	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
)

// --- API Request Types ---

// CreateSessionRequest optionally seeds a new session.
type CreateSessionRequest struct {
	// Intent, if set, becomes the session's current intent before the
	// first turn.
	Intent string `json:"intent,omitempty"`
}

// MessageRequest is one user utterance.
type MessageRequest struct {
	Text string `json:"text"`
}

// --- API Response Types ---

// SessionResponse is the API representation of a live session.
type SessionResponse struct {
	ID            string            `json:"id"`
	CurrentIntent string            `json:"current_intent"`
	Vars          map[string]string `json:"vars,omitempty"`
	LastReply     string            `json:"last_reply,omitempty"`
	Turns         int               `json:"turns"`
	CreatedAt     time.Time         `json:"created_at"`
	LastActive    time.Time         `json:"last_active"`
}

// MessageResponse is the outcome of one turn.
type MessageResponse struct {
	Reply   string       `json:"reply"`
	Label   intent.Label `json:"label"`
	Intent  string       `json:"intent"`
	Outcome dsl.Outcome  `json:"outcome"`
	Effects int          `json:"effects"`
}

// IntentResponse describes one intent of the live program.
type IntentResponse struct {
	Name  string `json:"name"`
	Rules int    `json:"rules"`
	Line  int    `json:"line"`
}

// HealthResponse reports server status.
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
	Intents  int    `json:"intents"`
}

// ErrorResponse is the API error format.
type ErrorResponse struct {
	Error string `json:"error"`
}
