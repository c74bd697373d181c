package ioctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_fifo(t *testing.T) {
	var q taskQueue
	require.True(t, q.empty())
	require.Nil(t, q.pop())

	a, b, c := NewPostTask(nil), NewPostTask(nil), NewPostTask(nil)
	q.push(a)
	q.push(b)
	q.push(c)
	require.Equal(t, 3, q.len())
	for _, task := range []*PostTask{a, b, c} {
		assert.True(t, task.Queued())
	}

	require.Same(t, a, q.pop())
	require.Same(t, b, q.pop())
	require.Same(t, c, q.pop())
	require.Nil(t, q.pop())
	require.True(t, q.empty())
	require.Equal(t, 0, q.len())
	for _, task := range []*PostTask{a, b, c} {
		assert.False(t, task.Queued())
	}
}

func TestTaskQueue_pushQueuedPanics(t *testing.T) {
	var q taskQueue
	task := NewPostTask(nil)
	q.push(task)
	assert.PanicsWithValue(t, ErrTaskAlreadyQueued, func() { q.push(task) })
	assert.Equal(t, 1, q.len())

	// requeue after pop is fine
	q.pop()
	q.push(task)
	assert.Same(t, task, q.pop())
}

func TestTaskQueue_interleaved(t *testing.T) {
	var q taskQueue
	tasks := make([]*PostTask, 6)
	for i := range tasks {
		tasks[i] = NewPostTask(nil)
	}
	q.push(tasks[0])
	q.push(tasks[1])
	assert.Same(t, tasks[0], q.pop())
	q.push(tasks[2])
	q.push(tasks[3])
	assert.Same(t, tasks[1], q.pop())
	assert.Same(t, tasks[2], q.pop())
	q.push(tasks[4])
	assert.Same(t, tasks[3], q.pop())
	assert.Same(t, tasks[4], q.pop())
	assert.True(t, q.empty())
}

func TestPostTask_callback(t *testing.T) {
	var got *PostTask
	task := NewPostTask(func(task *PostTask) { got = task })
	task.Callback()(task)
	assert.Same(t, task, got)

	var called bool
	task.SetCallback(func(*PostTask) { called = true })
	task.Callback()(task)
	assert.True(t, called)
}
