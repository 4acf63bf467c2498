package port

import "sync"

// MutexBusLock implements BusLock with a plain mutex, suitable when
// the host process is the only thing touching the shared serial bus.
type MutexBusLock struct {
	mu sync.Mutex
}

func (b *MutexBusLock) Lock() {
	b.mu.Lock()
}

func (b *MutexBusLock) Unlock() {
	b.mu.Unlock()
}
