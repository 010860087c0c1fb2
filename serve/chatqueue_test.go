package serve

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatQueueOrdersPerKey(t *testing.T) {
	q := newChatQueue()
	release := make(chan struct{})

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	record := func(n int) {
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
		wg.Done()
	}

	wg.Add(5)
	q.Do("a", func() {
		<-release
		record(1)
	})
	for n := 2; n <= 5; n++ {
		q.Do("a", func() { record(n) })
	}
	assert.True(t, q.busy("a"))

	close(release)
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)

	require.Eventually(t, func() bool { return !q.busy("a") }, time.Second, 5*time.Millisecond)
}

func TestChatQueueKeysRunIndependently(t *testing.T) {
	q := newChatQueue()
	block := make(chan struct{})
	defer close(block)

	q.Do("slow", func() { <-block })

	done := make(chan struct{})
	q.Do("fast", func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a blocked key held up another key")
	}
}
