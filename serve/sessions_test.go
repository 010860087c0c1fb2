package serve

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	prog, err := dsl.Parse(testScript)
	require.NoError(t, err)
	return NewSessionManager(parley.StaticProgram(prog), intent.NewKeywordRouter())
}

func TestSessionManagerCreateGetDelete(t *testing.T) {
	m := newTestManager(t)

	ls := m.Create("")
	require.NotEmpty(t, ls.ID)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(ls.ID)
	require.NoError(t, err)
	assert.Same(t, ls, got)

	require.NoError(t, m.Delete(ls.ID))
	_, err = m.Get(ls.ID)
	assert.True(t, errors.Is(err, parley.ErrSessionNotFound))

	var se *parley.SessionError
	require.ErrorAs(t, m.Delete(ls.ID), &se)
	assert.Equal(t, ls.ID, se.SessionID)
}

func TestSessionManagerSeededIntent(t *testing.T) {
	m := newTestManager(t)
	ls := m.Create("refund")
	assert.Equal(t, "refund", ls.Conv.Session().CurrentIntent)

	// Seeding one session must not leak into the next.
	assert.Equal(t, "", m.Create("").Conv.Session().CurrentIntent)
}

func TestSessionManagerGetOrCreate(t *testing.T) {
	m := newTestManager(t)

	a, created := m.GetOrCreate("tg-1")
	assert.True(t, created)
	assert.Equal(t, "tg-1", a.ID)

	b, created := m.GetOrCreate("tg-1")
	assert.False(t, created)
	assert.Same(t, a, b)
}

func TestSessionManagerIsolation(t *testing.T) {
	m := newTestManager(t)
	a := m.Create("")
	b := m.Create("")

	_, err := a.Conv.Turn(t.Context(), "快递单号")
	require.NoError(t, err)

	assert.Equal(t, "logistics", a.Conv.Session().CurrentIntent)
	assert.Equal(t, "", b.Conv.Session().CurrentIntent)
	assert.Empty(t, b.Conv.Session().Vars)
}

func TestSessionManagerReap(t *testing.T) {
	m := newTestManager(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	idle := m.Create("")
	busy := m.Create("")
	busy.touch(base.Add(25*time.Minute), "hi")

	m.now = func() time.Time { return base.Add(40 * time.Minute) }
	assert.Nil(t, m.Reap(0), "non-positive ttl disables expiry")

	expired := m.Reap(30 * time.Minute)
	assert.Equal(t, []string{idle.ID}, expired)
	assert.Equal(t, 1, m.Len())

	_, err := m.Get(busy.ID)
	assert.NoError(t, err)
}

func TestSessionManagerListOrder(t *testing.T) {
	m := newTestManager(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		m.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		ids = append(ids, m.Create("").ID)
	}

	list := m.List()
	require.Len(t, list, 3)
	for i, ls := range list {
		assert.Equal(t, ids[i], ls.ID)
	}
}

func TestSessionManagerConcurrent(t *testing.T) {
	m := newTestManager(t)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ls, _ := m.GetOrCreate("shared")
			ls.Conv.Turn(t.Context(), "快递")
			ls.touch(time.Now(), "")
		}()
	}
	wg.Wait()

	ls, created := m.GetOrCreate("shared")
	assert.False(t, created)
	assert.Equal(t, 20, ls.response().Turns)
}
