package assistant

import (
	"context"
	"sync"

	"github.com/iwvelando/loan-desk/pkg/constants"
	"go.uber.org/zap"
)

// Store keeps the conversations of a server in memory. When full, creating a
// session evicts the least recently active idle one. A session handed out by
// Send stays pinned until its reply is appended and is never evicted.
type Store struct {
	gateway Gateway
	logger  *zap.Logger
	opts    []Option
	max     int

	mu       sync.Mutex
	sessions map[string]*Session
	pins     map[string]int
}

// NewStore creates a store whose sessions share gateway and opts. A max of
// zero or less uses the default limit.
func NewStore(gateway Gateway, logger *zap.Logger, max int, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if max <= 0 {
		max = constants.MaxAssistantSessions
	}
	return &Store{
		gateway:  gateway,
		logger:   logger,
		opts:     opts,
		max:      max,
		sessions: make(map[string]*Session),
		pins:     make(map[string]int),
	}
}

// Get returns an existing session.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, or a new session when id is empty
// or unknown. It fails with ErrStoreFull when the store is at its limit and
// no session can be evicted.
func (st *Store) GetOrCreate(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.getOrCreateLocked(id)
}

// Send delivers text to the session for id, creating the session when needed.
// The session is returned even when the inquiry is rejected.
func (st *Store) Send(ctx context.Context, id, text string) (*Session, Message, error) {
	st.mu.Lock()
	s, err := st.getOrCreateLocked(id)
	if err != nil {
		st.mu.Unlock()
		return nil, Message{}, err
	}
	st.pins[s.ID()]++
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		if st.pins[s.ID()]--; st.pins[s.ID()] <= 0 {
			delete(st.pins, s.ID())
		}
	}()

	reply, err := s.Send(ctx, text)
	return s, reply, err
}

// Len returns the number of stored sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) getOrCreateLocked(id string) (*Session, error) {
	if s, ok := st.sessions[id]; ok {
		return s, nil
	}
	if len(st.sessions) >= st.max && !st.evictLocked() {
		return nil, ErrStoreFull
	}

	s := NewSession(st.gateway, st.logger, st.opts...)
	st.sessions[s.ID()] = s
	return s, nil
}

func (st *Store) evictLocked() bool {
	var oldest *Session
	for id, s := range st.sessions {
		if st.pins[id] > 0 || s.InFlight() {
			continue
		}
		if oldest == nil || s.LastActive().Before(oldest.LastActive()) {
			oldest = s
		}
	}
	if oldest == nil {
		return false
	}
	delete(st.sessions, oldest.ID())
	st.logger.Debug("evicted assistant session",
		zap.String("op", "assistant.store.evict"),
		zap.String("session", oldest.ID()))
	return true
}
