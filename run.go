package ioctx

import (
	"runtime/debug"

	"github.com/joeycumines/logiface"
)

// run is the worker loop. It returns nil once abort is observed, or the
// error of a failed wait or an unhandled dispatch failure.
func (x *IoCtx[T]) run() error {
	buf := x.poller.newWaitBuffer(x.maxEvents)

	for {
		x.lock()

		x.sweepTimers()

		if x.abortRequested.Load() {
			x.unlock()
			return nil
		}

		if task := x.taskQueue.pop(); task != nil {
			var wake bool
			if x.multipleThread {
				// timers may have queued more than this worker can take
				wake = x.threadWaiting > 0 && !x.taskQueue.empty()
			}
			x.unlock()
			if wake {
				x.wakeupAThread()
			}
			if err := x.runTask(task); err != nil {
				return err
			}
			continue
		}

		if x.multipleThread {
			x.threadWaiting++
		}
		x.unlock()

		events, err := x.poller.wait(&buf, x.waitCeiling)

		if x.multipleThread {
			x.queLock.Lock()
			x.threadWaiting--
			taskQueueSize := x.taskQueue.len()
			threadWaiting := x.threadWaiting
			x.queLock.Unlock()

			if err != nil {
				return err
			}

			if threadWaiting > 0 && x.shouldWakeAnother(events, taskQueueSize) {
				x.wakeupAThread()
			}
		} else if err != nil {
			return err
		}

		for i := range events {
			evt := &events[i]
			if evt.token.IsSignal() {
				continue
			}
			if err := x.dispatch(evt); err != nil {
				return err
			}
		}
	}
}

// sweepTimers moves every expired timer's task into the task queue. The
// caller holds the queue lock.
func (x *IoCtx[T]) sweepTimers() {
	if x.timeQueue.Empty() {
		return
	}
	now := x.timeQueue.clock()
	for {
		node := x.timeQueue.expired(now)
		if node == nil {
			return
		}
		x.stats.timers.Add(1)
		if task := node.Task(); task != nil {
			x.taskQueue.push(task)
		}
	}
}

// shouldWakeAnother is the idle-wakeup heuristic, applied after a wait
// returns while other workers are still idle. It always propagates abort.
// Otherwise it wakes another worker only if this batch consumed a wakeup
// signal and there is more work than this worker is about to take.
func (x *IoCtx[T]) shouldWakeAnother(events []pollEvent, taskQueueSize int) bool {
	if x.abortRequested.Load() {
		return true
	}
	var wakeupEvent, effectiveEvent int
	for i := range events {
		if events[i].token.IsSignal() {
			wakeupEvent = 1
		} else {
			effectiveEvent = 1
		}
		if wakeupEvent != 0 && effectiveEvent != 0 {
			break
		}
	}
	return wakeupEvent != 0 && taskQueueSize+effectiveEvent > 1
}

// dispatch resolves and invokes the callback for one readiness event.
func (x *IoCtx[T]) dispatch(evt *pollEvent) error {
	cb := x.callbacks.lookup(evt.token)
	if cb == nil {
		x.stats.stale.Add(1)
		x.log.limited(logiface.LevelWarning, logCategoryStaleToken).
			Uint64("ctx", x.id).
			Stringer("token", evt.token).
			Stringer("events", evt.events).
			Log("dropped event for unregistered source")
		return nil
	}
	x.stats.events.Add(1)
	return x.runCallback(cb, &IoEvent{Events: evt.events, Token: evt.token})
}

func (x *IoCtx[T]) runTask(task *PostTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = x.dispatchFailure("task", r)
		}
	}()
	x.stats.tasks.Add(1)
	if fn := task.Callback(); fn != nil {
		fn(task)
	}
	return nil
}

func (x *IoCtx[T]) runCallback(cb *Callback, evt *IoEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = x.dispatchFailure("callback", r)
		}
	}()
	cb.Callback(evt)
	return nil
}

// dispatchFailure reports a recovered panic. With no FatalHandler it panics
// again, carrying the *PanicError out of Run.
func (x *IoCtx[T]) dispatchFailure(source string, r any) error {
	pe := &PanicError{
		Value:  r,
		Stack:  debug.Stack(),
		Source: source,
	}
	x.log.log.Crit().
		Uint64("ctx", x.id).
		Str("source", source).
		Any("panic", r).
		Log("unhandled panic in dispatch")
	if x.fatal == nil {
		panic(pe)
	}
	x.fatal(pe)
	return pe
}
