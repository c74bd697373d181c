package ioctx

import (
	"sync"
)

// Trait selects the concurrency policy of an IoCtx. It is fixed by the type
// argument, so the mode cannot change for the lifetime of the engine.
type Trait interface {
	SingleThreadTrait | MultiThreadTrait

	// MultipleThread reports whether several workers may call Run.
	MultipleThread() bool

	// NewLock returns the lock guarding the task queue, timer queue, idle
	// count, and abort flag.
	NewLock() sync.Locker

	// NewAllocator returns the allocator handed out by IoCtx.Allocator.
	NewAllocator() Allocator
}

// SingleThreadTrait runs the engine on exactly one worker, with no locking
// and no wakeup signalling.
type SingleThreadTrait struct{}

// MultiThreadTrait lets any number of workers share one engine.
type MultiThreadTrait struct{}

func (SingleThreadTrait) MultipleThread() bool { return false }

func (SingleThreadTrait) NewLock() sync.Locker { return NaiveLock{} }

func (SingleThreadTrait) NewAllocator() Allocator { return new(listAllocator) }

func (MultiThreadTrait) MultipleThread() bool { return true }

func (MultiThreadTrait) NewLock() sync.Locker { return new(SpinLock) }

func (MultiThreadTrait) NewAllocator() Allocator { return newPoolAllocator() }
