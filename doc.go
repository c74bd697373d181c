// Package ioctx provides a minimal asynchronous I/O execution engine: a run
// loop that multiplexes fixed-duration timers, posted tasks, and epoll
// readiness events, optionally shared by several worker goroutines.
//
// # Architecture
//
// An [IoCtx] owns three structures:
//   - a [TimeQueue], a circular intrusive list of caller-owned [TimeNode]
//     values that all share one duration, so insertion order is expiry order
//   - an intrusive FIFO of caller-owned [PostTask] values
//   - an epoll instance, plus an eventfd used to wake idle workers
//
// Each worker repeatedly moves expired timers into the task queue, runs one
// task, or, if there is none, blocks in epoll for at most the wait ceiling and
// dispatches the returned events to their [Callback] records.
//
// # Concurrency Modes
//
// The mode is a type argument, fixed for the lifetime of the engine:
//   - [SingleThreadTrait]: one worker, no locking, no wakeup signalling
//   - [MultiThreadTrait]: any number of workers, a [SpinLock] around the
//     queues, and a wakeup heuristic that avoids waking idle workers for work
//     the waking worker has already claimed
//
// [NewIoContext] selects the mode from a bool instead.
//
// # Dispatch
//
// A readiness event carries a [Token], not a pointer. Tokens index a
// generation-checked side table of [Callback] records, so an event that
// arrives after [IoCtx.UnregisterIO] is dropped instead of dispatched to a
// recycled record. Tokens below [CallbackGuard] are engine signals.
//
// # Failure Semantics
//
// A panic escaping a task or callback is fatal. It is recovered into a
// [PanicError] and passed to the [FatalHandler]; by default it is re-panicked
// out of [IoCtx.Run]. Posting a queued task, or pushing a linked timer node,
// panics with [ErrTaskAlreadyQueued] or [ErrTimeNodeLinked].
//
// # Usage
//
//	ctx, err := ioctx.New[ioctx.MultiThreadTrait](
//	    ioctx.WithWaitCeiling(100 * time.Millisecond),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	var wg sync.WaitGroup
//	for range 4 {
//	    wg.Add(1)
//	    go func() {
//	        defer wg.Done()
//	        _ = ctx.Run(context.Background())
//	    }()
//	}
//
//	ctx.Post(func() {
//	    fmt.Println("hello from a worker")
//	    ctx.RequestAbort()
//	})
//
//	wg.Wait()
package ioctx
