package session

import "sync"

// coachLocks serialises scheduling per coach. Two concurrent batches for the
// same coach would otherwise both pass the overlap check against the same
// pre-race state and commit an overlapping pair.
type coachLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newCoachLocks() *coachLocks {
	return &coachLocks{locks: make(map[int]*sync.Mutex)}
}

func (c *coachLocks) forCoach(coachID int) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.locks[coachID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[coachID] = l
	}
	return l
}
