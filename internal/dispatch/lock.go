package dispatch

import "sync"

// LockManager provides per-repository mutual exclusion for the optional
// serialization policy.
//
// Two-level locking: the outer mutex protects the map of per-repository
// locks, and each repository lock serializes that repository's deployments.
// Different repositories always deploy concurrently.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockManager creates an empty lock manager.
func NewLockManager() *LockManager {
	return &LockManager{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock blocks until the repository's deployment lock is held. Each Lock must
// be paired with an Unlock for the same repository.
func (lm *LockManager) Lock(repo string) {
	lm.mu.Lock()
	lock, exists := lm.locks[repo]
	if !exists {
		lock = &sync.Mutex{}
		lm.locks[repo] = lock
	}
	lm.mu.Unlock()

	lock.Lock()
}

// Unlock releases the repository's deployment lock.
func (lm *LockManager) Unlock(repo string) {
	lm.mu.Lock()
	lock := lm.locks[repo]
	lm.mu.Unlock()

	if lock != nil {
		lock.Unlock()
	}
}
