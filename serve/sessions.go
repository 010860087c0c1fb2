package serve

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
	"github.com/google/uuid"
)

// LiveSession is a conversation held in memory by the server.
type LiveSession struct {
	ID        string
	Conv      *parley.Conversation
	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	lastReply  string
	turns      int
	inFlight   int
}

// begin marks a turn as running. The reaper never expires a session with a
// running turn.
func (ls *LiveSession) begin(now time.Time) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.inFlight++
	ls.lastActive = now
}

// end closes a turn opened with begin.
func (ls *LiveSession) end(now time.Time) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.inFlight--
	ls.lastActive = now
}

func (ls *LiveSession) touch(now time.Time, reply string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.lastActive = now
	ls.lastReply = reply
	ls.turns++
	return ls.turns
}

// expired reports whether the session has been idle since before cutoff.
func (ls *LiveSession) expired(cutoff time.Time) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.inFlight == 0 && ls.lastActive.Before(cutoff)
}

func (ls *LiveSession) response() SessionResponse {
	s := ls.Conv.Session()
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return SessionResponse{
		ID:            ls.ID,
		CurrentIntent: s.CurrentIntent,
		Vars:          s.Vars,
		LastReply:     ls.lastReply,
		Turns:         ls.turns,
		CreatedAt:     ls.CreatedAt,
		LastActive:    ls.lastActive,
	}
}

// SessionManager owns the live conversations. Each session has its own
// Conversation; the program and router are shared.
type SessionManager struct {
	src    parley.ProgramSource
	router intent.Router
	opts   []parley.ConversationOption
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*LiveSession
}

// NewSessionManager creates an empty manager.
func NewSessionManager(src parley.ProgramSource, router intent.Router, opts ...parley.ConversationOption) *SessionManager {
	return &SessionManager{
		src:      src,
		router:   router,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*LiveSession),
	}
}

// Create starts a new session with a generated id. A non-empty
// initialIntent becomes the session's current intent.
func (m *SessionManager) Create(initialIntent string) *LiveSession {
	return m.create(uuid.NewString(), initialIntent)
}

func (m *SessionManager) create(id, initialIntent string) *LiveSession {
	ls := m.newLive(id, initialIntent)
	m.mu.Lock()
	m.sessions[id] = ls
	m.mu.Unlock()
	return ls
}

func (m *SessionManager) newLive(id, initialIntent string) *LiveSession {
	opts := m.opts
	if initialIntent != "" {
		s := dsl.NewSession()
		s.CurrentIntent = initialIntent
		opts = append(opts[:len(opts):len(opts)], parley.WithSession(s))
	}
	now := m.now()
	return &LiveSession{
		ID:         id,
		Conv:       parley.NewConversation(m.src, m.router, opts...),
		CreatedAt:  now,
		lastActive: now,
	}
}

// Get returns the session with the given id.
func (m *SessionManager) Get(id string) (*LiveSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ls, ok := m.sessions[id]
	if !ok {
		return nil, &parley.SessionError{SessionID: id, Err: parley.ErrSessionNotFound}
	}
	return ls, nil
}

// GetOrCreate returns the session stored under key, creating it if needed.
// The bool reports whether a new session was created.
func (m *SessionManager) GetOrCreate(key string) (*LiveSession, bool) {
	m.mu.RLock()
	ls, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return ls, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ls, ok := m.sessions[key]; ok {
		return ls, false
	}
	ls = m.newLive(key, "")
	m.sessions[key] = ls
	return ls, true
}

// Delete ends a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return &parley.SessionError{SessionID: id, Err: parley.ErrSessionNotFound}
	}
	delete(m.sessions, id)
	return nil
}

// List returns all live sessions, oldest first.
func (m *SessionManager) List() []*LiveSession {
	m.mu.RLock()
	out := make([]*LiveSession, 0, len(m.sessions))
	for _, ls := range m.sessions {
		out = append(out, ls)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *LiveSession) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Reap removes sessions idle for longer than ttl and returns their ids.
// Sessions with a turn in progress are kept. A non-positive ttl disables
// expiry.
func (m *SessionManager) Reap(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []string
	for id, ls := range m.sessions {
		if ls.expired(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
