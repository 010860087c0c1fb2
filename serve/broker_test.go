package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerFiltersBySession(t *testing.T) {
	b := NewEventBroker()
	all := b.Subscribe("")
	one := b.Subscribe("s1")
	require.NotNil(t, all)
	require.NotNil(t, one)

	b.Publish(BrokerEvent{Type: EventTurn, SessionID: "s2", Timestamp: time.Now()})
	b.Publish(BrokerEvent{Type: EventTurn, SessionID: "s1", Timestamp: time.Now()})
	b.Publish(BrokerEvent{Type: EventScriptReloaded, Timestamp: time.Now()})

	assert.Len(t, all, 3)
	require.Len(t, one, 2)
	assert.Equal(t, "s1", (<-one).SessionID)
	assert.Equal(t, EventScriptReloaded, (<-one).Type)
}

func TestBrokerUnsubscribeAndClose(t *testing.T) {
	b := NewEventBroker()
	ch := b.Subscribe("")
	b.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)

	// Unsubscribing twice is a no-op.
	b.Unsubscribe(ch)

	other := b.Subscribe("")
	b.Close()
	_, ok = <-other
	assert.False(t, ok)
}

func TestBrokerSubscriberLimit(t *testing.T) {
	b := NewEventBroker()
	for range maxSubscribers {
		require.NotNil(t, b.Subscribe(""))
	}
	assert.Nil(t, b.Subscribe(""))
}

func TestBrokerDropsWhenFull(t *testing.T) {
	b := NewEventBroker()
	ch := b.Subscribe("")
	for range 100 {
		b.Publish(BrokerEvent{Type: EventTurn})
	}
	assert.Equal(t, cap(ch), len(ch))
}
