package serve

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerJobs(t *testing.T) {
	s := NewScheduler()

	require.NoError(t, s.AddJob("b", "@every 1m", func() {}))
	require.NoError(t, s.AddJob("a", "@hourly", func() {}))
	require.NoError(t, s.AddJob("a", "@every 5m", func() {}))
	assert.Equal(t, []string{"a", "b"}, s.ListJobs())
	assert.Len(t, s.c.Entries(), 2)

	require.NoError(t, s.RemoveJob("b"))
	assert.Equal(t, []string{"a"}, s.ListJobs())
	assert.Error(t, s.RemoveJob("b"))

	assert.Error(t, s.AddJob("bad", "not a schedule", func() {}))
	assert.Equal(t, []string{"a"}, s.ListJobs())
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler()
	var fired atomic.Int32
	require.NoError(t, s.AddJob("tick", "@every 1s", func() { fired.Add(1) }))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return fired.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	<-done
}
