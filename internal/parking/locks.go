package parking

import "sync"

// keyedMutex provides mutual exclusion per string key. Mutexes are created
// on first use and kept for the process lifetime; the key space is bounded
// by the number of spots, sectors and plates the garage ever sees.
type keyedMutex struct {
	locks sync.Map
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	entry, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := entry.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
