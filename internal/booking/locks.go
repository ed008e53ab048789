package booking

import "sync"

// sessionLocks serialises capacity-sensitive transitions per session, so two
// concurrent requests or approvals cannot both pass a stale count.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[int]*sync.Mutex)}
}

func (s *sessionLocks) forSession(sessionID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}
