package serve

import (
	"sync"
	"time"
)

const maxSubscribers = 50

// BrokerEvent is pushed to SSE subscribers.
type BrokerEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// EventBroker fans out events to SSE subscribers.
type EventBroker struct {
	// subscriber channel → session filter ("" receives everything)
	subscribers map[chan BrokerEvent]string
	mu          sync.RWMutex
}

// NewEventBroker creates a new broker.
func NewEventBroker() *EventBroker {
	return &EventBroker{
		subscribers: make(map[chan BrokerEvent]string),
	}
}

// Subscribe returns a channel that receives events for sessionID, or for
// every session when sessionID is empty. It returns nil when the broker is
// full. The caller must call Unsubscribe when done.
func (b *EventBroker) Subscribe(sessionID string) chan BrokerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subscribers) >= maxSubscribers {
		return nil
	}

	ch := make(chan BrokerEvent, 64)
	b.subscribers[ch] = sessionID
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *EventBroker) Unsubscribe(ch chan BrokerEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// Close closes all subscriber channels, causing SSE handlers to exit.
func (b *EventBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}
}

// Publish sends an event to all matching subscribers.
// Non-blocking: if a subscriber's buffer is full, the event is dropped for that subscriber.
func (b *EventBroker) Publish(event BrokerEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, filter := range b.subscribers {
		if filter != "" && event.SessionID != "" && filter != event.SessionID {
			continue
		}
		select {
		case ch <- event:
		default:
			// Subscriber too slow, drop event
		}
	}
}
