package ioctx

import (
	"sync/atomic"
)

// Stats is a point-in-time snapshot of engine activity.
type Stats struct {
	// TasksExecuted counts task callbacks invoked, including failed ones.
	TasksExecuted uint64
	// TimersExpired counts timer nodes swept from the timer queue.
	TimersExpired uint64
	// IOEvents counts readiness events dispatched to a Callback.
	IOEvents uint64
	// StaleEvents counts readiness events dropped because their token no
	// longer resolved.
	StaleEvents uint64
	// Wakeups counts wakeup signals sent to idle workers.
	Wakeups uint64
	// QueuedTasks is the task queue length.
	QueuedTasks int
	// IdleThreads is the number of workers blocked in the multiplexer. It is
	// always zero in single-thread mode.
	IdleThreads int
	// Workers is the number of goroutines inside Run.
	Workers int
	// Sources is the number of registered I/O sources.
	Sources int
}

type counters struct {
	tasks   atomic.Uint64
	timers  atomic.Uint64
	events  atomic.Uint64
	stale   atomic.Uint64
	wakeups atomic.Uint64
}

// Stats returns a snapshot of the engine's counters.
func (x *IoCtx[T]) Stats() Stats {
	s := Stats{
		TasksExecuted: x.stats.tasks.Load(),
		TimersExpired: x.stats.timers.Load(),
		IOEvents:      x.stats.events.Load(),
		StaleEvents:   x.stats.stale.Load(),
		Wakeups:       x.stats.wakeups.Load(),
		Sources:       x.callbacks.len(),
	}

	x.lifeMu.Lock()
	s.Workers = x.workers
	x.lifeMu.Unlock()

	if x.multipleThread {
		x.queLock.Lock()
		s.QueuedTasks = x.taskQueue.len()
		s.IdleThreads = x.threadWaiting
		x.queLock.Unlock()
	} else {
		s.QueuedTasks = x.taskQueue.len()
	}

	return s
}
