// Package prioritymutex implements a two-mode exclusive lock: a
// single exclusive owner guarded by two acquisition modes,
// high-priority and low-priority, where high-priority waiters are
// granted the lock strictly before any low-priority waiter. This
// reflects consensus precedence: header organization (HeaderOrganizer)
// is latency-critical to convergence, while transaction admission
// (TransactionOrganizer) is best-effort.
//
// Preemption is admission-time only: a low-priority holder is never
// interrupted mid-critical-section, it simply loses the race for the
// next acquisition to any high-priority waiter that arrived while it
// held the lock.
package prioritymutex

import "sync"

// Mutex is a prioritized mutex as described above. The zero value is
// not usable; construct with New.
type Mutex struct {
	mu          sync.Mutex
	cond        *sync.Cond
	locked      bool
	highWaiting int
}

// New returns a ready-to-use prioritized Mutex.
func New() *Mutex {
	m := &Mutex{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// LockHigh acquires the mutex in high-priority mode, used by
// HeaderOrganizer for the entire duration of header organization.
// High-priority acquisition always wins the race against waiting
// low-priority acquirers.
func (m *Mutex) LockHigh() {
	m.mu.Lock()
	m.highWaiting++
	for m.locked {
		m.cond.Wait()
	}
	m.highWaiting--
	m.locked = true
	m.mu.Unlock()
}

// UnlockHigh releases a lock taken by LockHigh.
func (m *Mutex) UnlockHigh() {
	m.mu.Lock()
	m.locked = false
	m.cond.Broadcast()
	m.mu.Unlock()
}

// LockLow acquires the mutex in low-priority mode, used by
// TransactionOrganizer. It yields to any pending high-priority waiter:
// it will not acquire the lock while one or more high-priority
// acquirers are waiting, even if the mutex is momentarily free.
func (m *Mutex) LockLow() {
	m.mu.Lock()
	for m.locked || m.highWaiting > 0 {
		m.cond.Wait()
	}
	m.locked = true
	m.mu.Unlock()
}

// UnlockLow releases a lock taken by LockLow.
func (m *Mutex) UnlockLow() {
	m.mu.Lock()
	m.locked = false
	m.cond.Broadcast()
	m.mu.Unlock()
}
