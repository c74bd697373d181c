package ioctx

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

var ctxIDCounter atomic.Uint64

// IoCtx is the engine: a task queue, a fixed-duration timer queue, and an
// epoll multiplexer shared by the workers calling Run.
//
// The trait T fixes the concurrency mode. With MultiThreadTrait any number of
// goroutines may call Run, and every method is safe for concurrent use. With
// SingleThreadTrait exactly one worker runs, and PostTask, PostTimeOut,
// CancelTimeOut, Post, After, Stats, and the I/O registration methods must
// only be called from that worker, or while it is not running. RequestAbort and State are always
// safe to call from any goroutine.
type IoCtx[T Trait] struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	trait          T
	multipleThread bool

	// queLock guards everything up to abortRequested
	queLock        sync.Locker
	taskQueue      taskQueue
	timeQueue      TimeQueue
	threadWaiting  int
	abortRequested atomic.Bool

	poller    poller
	callbacks callbackTable
	allocator Allocator

	state fastState

	// lifeMu guards workers, against Close
	lifeMu  sync.Mutex
	workers int

	stats counters
	log   ctxLogger
	fatal FatalHandler
	id    uint64

	waitCeiling time.Duration
	maxEvents   int
}

// New creates an engine for the concurrency mode selected by T.
//
// Failure to create the multiplexer or the wakeup source is returned as an
// error; no partially constructed engine is returned.
func New[T Trait](opts ...Option) (*IoCtx[T], error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	x := &IoCtx[T]{
		id:          ctxIDCounter.Add(1),
		log:         newCtxLogger(cfg.logger),
		fatal:       cfg.fatal,
		waitCeiling: cfg.waitCeiling,
		maxEvents:   cfg.maxEvents,
	}
	x.multipleThread = x.trait.MultipleThread()
	x.queLock = x.trait.NewLock()
	x.allocator = x.trait.NewAllocator()
	x.timeQueue.init(cfg.timeOut, cfg.clock)
	x.callbacks.init(x.trait.NewLock())

	if err := x.poller.init(); err != nil {
		x.log.log.Err().
			Err(err).
			Uint64("ctx", x.id).
			Log("io context setup failed")
		return nil, err
	}

	x.log.log.Debug().
		Uint64("ctx", x.id).
		Int("epoll", x.poller.handle()).
		Int("wakeup", x.poller.wakeupHandle()).
		Bool("multiple_thread", x.multipleThread).
		Log("io context created")

	return x, nil
}

// MultipleThread reports whether the engine was built with MultiThreadTrait.
func (x *IoCtx[T]) MultipleThread() bool { return x.multipleThread }

// EventPollHandle returns the epoll file descriptor, for integrations that
// need to observe or extend the multiplexer directly. Sources added behind
// the engine's back must not use keys below CallbackGuard.
func (x *IoCtx[T]) EventPollHandle() int { return x.poller.handle() }

// Allocator returns the allocator selected by the trait.
func (x *IoCtx[T]) Allocator() Allocator { return x.allocator }

// TimeOut returns the fixed duration applied by PostTimeOut.
func (x *IoCtx[T]) TimeOut() time.Duration { return x.timeQueue.Duration() }

// WaitCeiling returns the maximum duration of one multiplexer wait.
func (x *IoCtx[T]) WaitCeiling() time.Duration { return x.waitCeiling }

// State returns the current lifecycle state.
func (x *IoCtx[T]) State() ContextState { return x.state.Load() }

func (x *IoCtx[T]) lock() {
	if x.multipleThread {
		x.queLock.Lock()
	}
}

func (x *IoCtx[T]) unlock() {
	if x.multipleThread {
		x.queLock.Unlock()
	}
}

// PostTask enqueues task to run on a worker. In multi-thread mode, one idle
// worker is woken if any is blocked in the multiplexer.
//
// Posting a task that is still queued panics with ErrTaskAlreadyQueued.
func (x *IoCtx[T]) PostTask(task *PostTask) {
	if !x.multipleThread {
		x.taskQueue.push(task)
		return
	}

	x.queLock.Lock()
	x.taskQueue.push(task)
	threadWaiting := x.threadWaiting
	x.queLock.Unlock()

	if threadWaiting > 0 {
		x.wakeupAThread()
	}
}

// PostTimeOut arms node with the engine's fixed duration. When it expires a
// worker unlinks it and posts node.Task(). Use CancelTimeOut to withdraw it
// before then.
//
// Arming a node that is still linked panics with ErrTimeNodeLinked.
func (x *IoCtx[T]) PostTimeOut(node *TimeNode) {
	x.lock()
	defer x.unlock()
	x.timeQueue.Push(node)
}

// CancelTimeOut withdraws node from the timer queue, under the same lock the
// workers sweep it with. It reports whether the node was still armed; false
// means it already expired, or was never armed.
func (x *IoCtx[T]) CancelTimeOut(node *TimeNode) bool {
	x.lock()
	defer x.unlock()
	if !node.Linked() {
		return false
	}
	node.RemoveSelf()
	return true
}

// Post runs fn on a worker, using a task from the engine's allocator.
func (x *IoCtx[T]) Post(fn func()) {
	task := x.allocator.NewPostTask()
	task.SetCallback(func(task *PostTask) {
		x.allocator.FreePostTask(task)
		fn()
	})
	x.PostTask(task)
}

// After runs fn on a worker once the engine's fixed duration has elapsed,
// using a node and task from the engine's allocator.
func (x *IoCtx[T]) After(fn func()) {
	node := x.allocator.NewTimeNode()
	task := x.allocator.NewPostTask()
	task.SetCallback(func(task *PostTask) {
		x.allocator.FreePostTask(task)
		x.allocator.FreeTimeNode(node)
		fn()
	})
	node.SetTask(task)
	x.PostTimeOut(node)
}

// RequestAbort asks every worker to return from Run. It is a best-effort
// shutdown: queued tasks and pending timers are abandoned, not drained.
// Each worker observes the request within one wait ceiling.
func (x *IoCtx[T]) RequestAbort() {
	x.state.TransitionAny([]ContextState{StateAwake, StateRunning}, StateAborting)

	if !x.multipleThread {
		x.abortRequested.Store(true)
		return
	}

	x.queLock.Lock()
	x.abortRequested.Store(true)
	threadWaiting := x.threadWaiting
	x.queLock.Unlock()

	x.log.log.Debug().
		Uint64("ctx", x.id).
		Int("idle", threadWaiting).
		Log("abort requested")

	if threadWaiting > 0 {
		x.wakeupAThread()
	}
}

// AbortRequested reports whether RequestAbort has been called.
func (x *IoCtx[T]) AbortRequested() bool { return x.abortRequested.Load() }

// wakeupAThread releases one worker blocked in the multiplexer.
func (x *IoCtx[T]) wakeupAThread() {
	if err := x.poller.wakeup(); err != nil {
		x.log.limited(logiface.LevelError, logCategoryWakeupError).
			Err(err).
			Uint64("ctx", x.id).
			Log("failed to wake a worker")
		return
	}
	x.stats.wakeups.Add(1)
}

// RegisterIO adds fd to the multiplexer, dispatching its readiness events to
// cb on whichever worker receives them. The returned Token is the key the
// events carry.
func (x *IoCtx[T]) RegisterIO(fd int, events IOEvents, cb *Callback) (Token, error) {
	if x.state.Load() == StateClosed {
		return 0, ErrClosed
	}
	tok, err := x.callbacks.add(fd, cb)
	if err != nil {
		return 0, err
	}
	if err := x.poller.add(fd, events, tok); err != nil {
		_, _ = x.callbacks.remove(fd)
		return 0, err
	}
	x.log.log.Trace().
		Uint64("ctx", x.id).
		Int("fd", fd).
		Stringer("token", tok).
		Stringer("events", events).
		Log("io source registered")
	return tok, nil
}

// ModifyIO changes the interest set of a registered fd. It also re-arms a
// source registered with EventOneShot.
func (x *IoCtx[T]) ModifyIO(fd int, events IOEvents) error {
	if x.state.Load() == StateClosed {
		return ErrClosed
	}
	tok, ok := x.callbacks.token(fd)
	if !ok {
		return ErrFDNotRegistered
	}
	return x.poller.modify(fd, events, tok)
}

// UnregisterIO removes fd from the multiplexer. An event for fd already
// returned to another worker is dropped rather than dispatched, because the
// token no longer resolves.
func (x *IoCtx[T]) UnregisterIO(fd int) error {
	if _, err := x.callbacks.remove(fd); err != nil {
		return err
	}
	if x.state.Load() == StateClosed {
		return nil
	}
	return x.poller.remove(fd)
}

// Close releases the multiplexer handles. It fails with ErrStillRunning while
// any worker is inside Run.
func (x *IoCtx[T]) Close() error {
	x.lifeMu.Lock()
	defer x.lifeMu.Unlock()

	if x.workers != 0 {
		return ErrStillRunning
	}
	if !x.state.TransitionAny([]ContextState{StateAwake, StateRunning, StateAborting}, StateClosed) {
		return ErrClosed
	}

	x.log.log.Debug().
		Uint64("ctx", x.id).
		Log("io context closed")

	return x.poller.close()
}

// enter registers a worker, for Run.
func (x *IoCtx[T]) enter() error {
	x.lifeMu.Lock()
	defer x.lifeMu.Unlock()

	if x.state.Load() == StateClosed {
		return ErrClosed
	}
	if !x.multipleThread && x.workers != 0 {
		return ErrAlreadyRunning
	}
	x.workers++
	x.state.TryTransition(StateAwake, StateRunning)
	return nil
}

func (x *IoCtx[T]) exit() {
	x.lifeMu.Lock()
	x.workers--
	x.lifeMu.Unlock()
}

// Run enters the loop on the calling goroutine and blocks until RequestAbort
// is observed. Cancelling ctx requests abort for the whole engine; in that
// case Run returns ctx.Err().
//
// A panic escaping a task or callback is a dispatch failure, handed to the
// FatalHandler. With the default handler the panic propagates out of Run.
func (x *IoCtx[T]) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := x.enter(); err != nil {
		return err
	}
	defer x.exit()

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, x.RequestAbort)
		defer stop()
	}

	x.log.log.Debug().
		Uint64("ctx", x.id).
		Log("worker started")

	err := x.run()

	if err != nil {
		x.log.log.Err().
			Uint64("ctx", x.id).
			Err(err).
			Log("worker failed")
	} else {
		x.log.log.Debug().
			Uint64("ctx", x.id).
			Log("worker stopped")
	}

	if err == nil {
		err = ctx.Err()
	}
	return err
}

// IoContext selects the concurrency mode at run time, hiding the type
// argument of the IoCtx it wraps.
type IoContext struct {
	engine
}

// engine is the method set shared by every IoCtx instantiation.
type engine interface {
	MultipleThread() bool
	EventPollHandle() int
	Allocator() Allocator
	TimeOut() time.Duration
	WaitCeiling() time.Duration
	State() ContextState
	Stats() Stats
	PostTask(task *PostTask)
	PostTimeOut(node *TimeNode)
	CancelTimeOut(node *TimeNode) bool
	Post(fn func())
	After(fn func())
	RequestAbort()
	AbortRequested() bool
	RegisterIO(fd int, events IOEvents, cb *Callback) (Token, error)
	ModifyIO(fd int, events IOEvents) error
	UnregisterIO(fd int) error
	Run(ctx context.Context) error
	Close() error
}

var (
	_ engine = (*IoCtx[SingleThreadTrait])(nil)
	_ engine = (*IoCtx[MultiThreadTrait])(nil)
)

// NewIoContext creates an engine in multi-thread mode if multipleThread is
// set, otherwise in single-thread mode. The choice is fixed for the lifetime
// of the engine.
func NewIoContext(multipleThread bool, opts ...Option) (*IoContext, error) {
	var (
		e   engine
		err error
	)
	if multipleThread {
		e, err = New[MultiThreadTrait](opts...)
	} else {
		e, err = New[SingleThreadTrait](opts...)
	}
	if err != nil {
		return nil, err
	}
	return &IoContext{engine: e}, nil
}
