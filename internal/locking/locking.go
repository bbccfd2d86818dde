// Package locking provides a process-wide registry of per-path
// reader/writer locks. Locks are keyed by the literal path string, created
// lazily, and never removed; the registry is the only global mutable state
// in the storage stack and is owned explicitly by whoever constructs it so
// tests can run against isolated instances.
package locking

import "sync"

// PathLocks maps path strings to RW locks.
type PathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// NewPathLocks returns an empty registry.
func NewPathLocks() *PathLocks {
	return &PathLocks{locks: make(map[string]*sync.RWMutex)}
}

// get returns the lock for path, creating it on first use.
func (p *PathLocks) get(path string) *sync.RWMutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[path]
	if !ok {
		l = &sync.RWMutex{}
		p.locks[path] = l
	}
	return l
}

// AcquireRead blocks until no writer holds the lock for path.
// Any number of readers may hold it concurrently.
func (p *PathLocks) AcquireRead(path string) {
	p.get(path).RLock()
}

// ReleaseRead releases a read hold on path.
func (p *PathLocks) ReleaseRead(path string) {
	p.get(path).RUnlock()
}

// AcquireWrite blocks until no readers or writer hold the lock for path,
// then takes it exclusively. There is no timeout: a caller waits
// indefinitely if the lock is never released.
func (p *PathLocks) AcquireWrite(path string) {
	p.get(path).Lock()
}

// ReleaseWrite releases the exclusive hold on path.
func (p *PathLocks) ReleaseWrite(path string) {
	p.get(path).Unlock()
}

// Len reports how many distinct paths have been locked so far.
func (p *PathLocks) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
