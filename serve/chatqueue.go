package serve

import "sync"

// chatQueue runs work in arrival order per key. Different keys run
// concurrently; a key's worker exits once its backlog is empty.
type chatQueue struct {
	mu      sync.Mutex
	pending map[string][]func()
}

func newChatQueue() *chatQueue {
	return &chatQueue{pending: make(map[string][]func())}
}

// Do schedules fn after every earlier fn queued under key.
func (q *chatQueue) Do(key string, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if backlog, busy := q.pending[key]; busy {
		q.pending[key] = append(backlog, fn)
		return
	}
	q.pending[key] = nil
	go q.drain(key, fn)
}

func (q *chatQueue) drain(key string, fn func()) {
	for fn != nil {
		fn()

		q.mu.Lock()
		if backlog := q.pending[key]; len(backlog) > 0 {
			fn = backlog[0]
			q.pending[key] = backlog[1:]
		} else {
			delete(q.pending, key)
			fn = nil
		}
		q.mu.Unlock()
	}
}

// busy reports whether key has work running or queued.
func (q *chatQueue) busy(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.pending[key]
	return ok
}
