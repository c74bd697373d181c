package ioctx

import (
	"runtime"
	"sync/atomic"
)

// spinLockYield is the number of failed CAS attempts before yielding.
const spinLockYield = 16

// SpinLock is a test-and-set lock for critical sections that only link,
// unlink, or count. It must never be held across a callback.
type SpinLock struct { // betteralign:ignore
	_ [0]func()
	v atomic.Uint32
}

// Lock acquires the lock, yielding the processor while it is contended.
func (x *SpinLock) Lock() {
	for spins := 0; ; spins++ {
		if x.v.Load() == 0 && x.v.CompareAndSwap(0, 1) {
			return
		}
		if spins >= spinLockYield {
			runtime.Gosched()
		}
	}
}

// TryLock acquires the lock if it is free.
func (x *SpinLock) TryLock() bool {
	return x.v.CompareAndSwap(0, 1)
}

// Unlock releases the lock.
func (x *SpinLock) Unlock() {
	x.v.Store(0)
}

// NaiveLock satisfies sync.Locker without synchronizing anything. It is the
// lock of a single-thread engine.
type NaiveLock struct{}

func (NaiveLock) Lock() {}

func (NaiveLock) Unlock() {}
