package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/montplusa/tetress/pkg/game"
	"github.com/montplusa/tetress/pkg/metrics"
)

// session is one human-vs-engine game. mu serialises moves.
type session struct {
	mu    sync.Mutex
	id    string
	state game.State
	agent game.AI
}

// Store holds live sessions and their last activity.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*session
	lastActive map[string]time.Time
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sessions:   make(map[string]*session),
		lastActive: make(map[string]time.Time),
		now:        time.Now,
	}
}

func (st *Store) create(agent game.AI) *session {
	sess := &session{id: uuid.NewString(), state: game.NewState(), agent: agent}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.id] = sess
	st.lastActive[sess.id] = st.now()
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
	return sess
}

// get returns the session and marks it active when touch is set.
func (st *Store) get(id string, touch bool) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if ok && touch {
		st.lastActive[id] = st.now()
	}
	return sess, ok
}

func (st *Store) delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	delete(st.lastActive, id)
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
	return ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict removes sessions idle for longer than ttl and returns their ids.
func (st *Store) Evict(ttl time.Duration) []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	var evicted []string
	for id, last := range st.lastActive {
		if now.Sub(last) > ttl {
			delete(st.sessions, id)
			delete(st.lastActive, id)
			evicted = append(evicted, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(st.sessions)))
	return evicted
}
