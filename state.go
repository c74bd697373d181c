package ioctx

import (
	"sync/atomic"
)

// ContextState is the lifecycle state of an IoCtx.
//
//	StateAwake    → StateRunning   [first Run]
//	StateAwake    → StateAborting  [RequestAbort]
//	StateRunning  → StateAborting  [RequestAbort]
//	StateAwake    → StateClosed    [Close]
//	StateAborting → StateClosed    [Close]
//	StateRunning  → StateClosed    [Close, once no worker is inside Run]
//	StateClosed   → (terminal)
//
// Aborting is sticky: every later Run returns immediately.
type ContextState uint32

const (
	// StateAwake indicates the context has been created but never run.
	StateAwake ContextState = iota
	// StateRunning indicates at least one Run has started.
	StateRunning
	// StateAborting indicates RequestAbort has been called.
	StateAborting
	// StateClosed indicates the multiplexer handles have been released.
	StateClosed
)

// String returns a human-readable representation of the state.
func (s ContextState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateAborting:
		return "Aborting"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state cell with cache-line padding.
type fastState struct { // betteralign:ignore
	_ [64]byte      // Cache line padding //nolint:unused
	v atomic.Uint32 // State value
	_ [60]byte      // Pad to cache line //nolint:unused
}

func (s *fastState) Load() ContextState {
	return ContextState(s.v.Load())
}

func (s *fastState) Store(state ContextState) {
	s.v.Store(uint32(state))
}

// TryTransition attempts to atomically transition from one state to another.
func (s *fastState) TryTransition(from, to ContextState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// TransitionAny attempts the transition from each of validFrom in turn.
func (s *fastState) TransitionAny(validFrom []ContextState, to ContextState) bool {
	for _, from := range validFrom {
		if s.v.CompareAndSwap(uint32(from), uint32(to)) {
			return true
		}
	}
	return false
}
