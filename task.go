package ioctx

// PostTask is a caller-owned unit of deferred work.
//
// The engine links the task into its queue on PostTask and unlinks it before
// invoking the callback, so a task may re-post itself from its own callback.
// A task must not be posted again, or discarded, while it is queued.
type PostTask struct {
	next     *PostTask
	prev     *PostTask
	callback func(task *PostTask)
	queued   bool
}

// NewPostTask returns a task invoking fn with the task itself.
func NewPostTask(fn func(task *PostTask)) *PostTask {
	return &PostTask{callback: fn}
}

// SetCallback sets the function invoked when the task runs.
func (x *PostTask) SetCallback(fn func(task *PostTask)) { x.callback = fn }

// Callback returns the function invoked when the task runs.
func (x *PostTask) Callback() func(task *PostTask) { return x.callback }

// Queued reports whether the task is linked into a task queue.
//
// The value is only stable when read by the goroutine that owns the task, or
// from within the task's own callback.
func (x *PostTask) Queued() bool { return x.queued }

// taskQueue is an intrusive FIFO of PostTask values.
//
// It is not synchronized; IoCtx guards it with the trait's lock.
type taskQueue struct {
	head *PostTask
	tail *PostTask
	size int
}

func (x *taskQueue) push(task *PostTask) {
	if task.queued {
		panic(ErrTaskAlreadyQueued)
	}
	task.queued = true
	task.next = nil
	task.prev = x.tail
	if x.tail != nil {
		x.tail.next = task
	} else {
		x.head = task
	}
	x.tail = task
	x.size++
}

func (x *taskQueue) pop() *PostTask {
	task := x.head
	if task == nil {
		return nil
	}
	x.head = task.next
	if x.head != nil {
		x.head.prev = nil
	} else {
		x.tail = nil
	}
	task.next = nil
	task.prev = nil
	task.queued = false
	x.size--
	return task
}

func (x *taskQueue) len() int { return x.size }

func (x *taskQueue) empty() bool { return x.head == nil }
