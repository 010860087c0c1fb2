package serve

import "time"

// Store persists turn transcripts and session lifecycle events. It is an
// audit trail: live sessions are never restored from it.
type Store interface {
	// Init creates tables if they don't exist.
	Init() error

	// Close closes the store.
	Close() error

	// InsertTurn records one conversation turn.
	InsertTurn(t Turn) error

	// ListTurns returns a session's turns, oldest first.
	ListTurns(sessionID string) ([]Turn, error)

	// InsertEvent records a session lifecycle event.
	InsertEvent(e StoreEvent) error

	// ListEvents returns recent events, newest first.
	ListEvents(limit int) ([]StoreEvent, error)
}

// Turn is a persisted conversation turn.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Utterance string    `json:"utterance"`
	Label     string    `json:"label"`
	Intent    string    `json:"intent"`
	Reply     string    `json:"reply"`
	Outcome   string    `json:"outcome"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreEvent is a persisted session lifecycle event.
type StoreEvent struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      string    `json:"data,omitempty"`
}

// Event types.
const (
	EventSessionCreated = "session.created"
	EventSessionClosed  = "session.closed"
	EventSessionExpired = "session.expired"
	EventTurn           = "turn"
	EventScriptReloaded = "script.reloaded"
)
