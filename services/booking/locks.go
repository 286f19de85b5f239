package booking

import "sync"

// keyedMutex serializes operations per booking id so cancellation and
// payment-outcome recording on the same booking cannot interleave. Entries
// are kept for the process lifetime; booking ids are bounded by traffic, not
// unbounded input.
type keyedMutex struct {
	locks sync.Map // booking id → *sync.Mutex
}

func (k *keyedMutex) lock(id string) func() {
	v, _ := k.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
