package ioctx

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrUnsupportedPlatform is returned by the constructors on platforms
	// without an epoll implementation.
	ErrUnsupportedPlatform = errors.New("ioctx: unsupported platform")

	// ErrClosed is returned when operations are attempted on a closed context.
	ErrClosed = errors.New("ioctx: context has been closed")

	// ErrAlreadyRunning is returned when Run is called on a single-thread
	// context that already has a worker.
	ErrAlreadyRunning = errors.New("ioctx: single-thread context is already running")

	// ErrStillRunning is returned by Close while a worker is inside Run.
	ErrStillRunning = errors.New("ioctx: workers are still running")

	// ErrInvalidWaitCeiling is returned when the configured wait ceiling is
	// not positive, or exceeds the timer queue duration.
	ErrInvalidWaitCeiling = errors.New("ioctx: wait ceiling must be positive and not exceed the timeout duration")

	// ErrInvalidTimeOut is returned when the configured timer queue duration
	// is not positive.
	ErrInvalidTimeOut = errors.New("ioctx: timeout duration must be positive")

	// ErrInvalidMaxEvents is returned when the configured epoll batch size is
	// not positive.
	ErrInvalidMaxEvents = errors.New("ioctx: max events must be positive")

	// ErrFDAlreadyRegistered is returned when registering an fd twice.
	ErrFDAlreadyRegistered = errors.New("ioctx: fd already registered")

	// ErrFDNotRegistered is returned when modifying or removing an unknown fd.
	ErrFDNotRegistered = errors.New("ioctx: fd not registered")

	// ErrNilCallback is returned when registering an I/O source without an
	// initialized callback record.
	ErrNilCallback = errors.New("ioctx: nil or uninitialized callback")
)

// Protocol misuse. These are used as panic values.
var (
	// ErrTaskAlreadyQueued indicates a PostTask was posted while still linked
	// into a task queue.
	ErrTaskAlreadyQueued = errors.New("ioctx: task is already queued")

	// ErrTimeNodeLinked indicates a TimeNode was pushed while still linked
	// into a timer queue.
	ErrTimeNodeLinked = errors.New("ioctx: time node is already linked")

	// ErrCallbackInitialized indicates an attempt to reassign the dispatch
	// slot of a Callback.
	ErrCallbackInitialized = errors.New("ioctx: callback already initialized")
)

// PanicError wraps a value recovered from a task or I/O callback.
//
// A dispatch failure is fatal: the engine has no per-task isolation, so the
// default FatalHandler re-panics with this value.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack captured at recovery.
	Stack []byte
	// Source identifies what was executing, "task" or "callback".
	Source string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("ioctx: %s panicked: %v", e.Source, e.Value)
}

// Unwrap returns the panic value if it is an error, enabling [errors.Is] and
// [errors.As] through the recovered value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
