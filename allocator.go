package ioctx

import (
	"sync"
)

// maxFreeList bounds the single-thread free lists.
const maxFreeList = 1024

// Allocator recycles the engine's caller-owned objects. Objects must only be
// freed once they are no longer queued or linked.
type Allocator interface {
	NewPostTask() *PostTask
	FreePostTask(task *PostTask)
	NewTimeNode() *TimeNode
	FreeTimeNode(node *TimeNode)
}

// poolAllocator is the multi-thread allocator, backed by sync.Pool.
type poolAllocator struct {
	tasks sync.Pool
	nodes sync.Pool
}

func newPoolAllocator() *poolAllocator {
	return &poolAllocator{
		tasks: sync.Pool{New: func() any { return new(PostTask) }},
		nodes: sync.Pool{New: func() any { return new(TimeNode) }},
	}
}

func (x *poolAllocator) NewPostTask() *PostTask {
	return x.tasks.Get().(*PostTask)
}

func (x *poolAllocator) FreePostTask(task *PostTask) {
	resetPostTask(task)
	x.tasks.Put(task)
}

func (x *poolAllocator) NewTimeNode() *TimeNode {
	node := x.nodes.Get().(*TimeNode)
	node.Init()
	return node
}

func (x *poolAllocator) FreeTimeNode(node *TimeNode) {
	resetTimeNode(node)
	x.nodes.Put(node)
}

// listAllocator is the single-thread allocator: plain free lists, no
// synchronization.
type listAllocator struct {
	tasks []*PostTask
	nodes []*TimeNode
}

func (x *listAllocator) NewPostTask() *PostTask {
	if n := len(x.tasks); n != 0 {
		task := x.tasks[n-1]
		x.tasks[n-1] = nil
		x.tasks = x.tasks[:n-1]
		return task
	}
	return new(PostTask)
}

func (x *listAllocator) FreePostTask(task *PostTask) {
	resetPostTask(task)
	if len(x.tasks) < maxFreeList {
		x.tasks = append(x.tasks, task)
	}
}

func (x *listAllocator) NewTimeNode() *TimeNode {
	if n := len(x.nodes); n != 0 {
		node := x.nodes[n-1]
		x.nodes[n-1] = nil
		x.nodes = x.nodes[:n-1]
		node.Init()
		return node
	}
	node := new(TimeNode)
	node.Init()
	return node
}

func (x *listAllocator) FreeTimeNode(node *TimeNode) {
	resetTimeNode(node)
	if len(x.nodes) < maxFreeList {
		x.nodes = append(x.nodes, node)
	}
}

func resetPostTask(task *PostTask) {
	if task.queued {
		panic(ErrTaskAlreadyQueued)
	}
	*task = PostTask{}
}

func resetTimeNode(node *TimeNode) {
	if node.Linked() {
		panic(ErrTimeNodeLinked)
	}
	*node = TimeNode{}
}
