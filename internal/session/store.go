package session

import "sync"

// Store is the process-wide mapping from Telegram user ID to that user's
// Session. It is the only shared mutable structure between dialogue
// handlers and pipeline runs; every access goes through its lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns a snapshot of the user's session, or a fresh idle session
// if none exists yet.
func (s *Store) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.Snapshot()
	}
	return Session{Stage: StageAwaitInput}
}

// Stage returns the user's current dialogue stage.
func (s *Store) Stage(userID int64) Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess.Stage
	}
	return StageAwaitInput
}

// Update mutates the user's session under the store lock, creating it on
// first use.
func (s *Store) Update(userID int64, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{Stage: StageAwaitInput}
		s.sessions[userID] = sess
	}
	fn(sess)
}

// Reset clears the user's accumulated choices and returns the session to
// StageAwaitInput.
func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// InProgress reports whether the user has advanced past the initial input
// stage. Text events for such users belong to the dialogue, not to
// command or fallback routing.
func (s *Store) InProgress(userID int64) bool {
	return s.Stage(userID) != StageAwaitInput
}

// Active counts sessions that are past the initial input stage.
func (s *Store) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.Stage != StageAwaitInput {
			n++
		}
	}
	return n
}
