package negotiation

import "sync"

// negotiationLocks serializes mediation and finalization per negotiation so
// concurrent turns cannot interleave their read-modify-write cycles.
type negotiationLocks struct {
	locks sync.Map
}

func (nl *negotiationLocks) lock(negotiationID string) func() {
	value, _ := nl.locks.LoadOrStore(negotiationID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
