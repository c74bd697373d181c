package ioctx

import (
	"time"
)

// TimeNode is one pending timeout, linked intrusively into a TimeQueue.
//
// The caller owns the node, typically embedding it in a longer-lived object.
// The engine only links and unlinks it. An unlinked node points at itself in
// both directions; the zero value is treated the same way.
type TimeNode struct {
	next   *TimeNode
	prev   *TimeNode
	task   *PostTask
	expire time.Time
}

// Init puts the node into the unlinked (self-loop) state. It must not be
// called on a linked node.
func (x *TimeNode) Init() {
	x.next = x
	x.prev = x
}

func (x *TimeNode) lazyInit() {
	if x.next == nil {
		x.Init()
	}
}

// SetTask sets the task posted when the node expires.
func (x *TimeNode) SetTask(task *PostTask) { x.task = task }

// Task returns the task posted when the node expires.
func (x *TimeNode) Task() *PostTask { return x.task }

// ExpireTime returns the expiry set by the last push.
func (x *TimeNode) ExpireTime() time.Time { return x.expire }

// IsExpire reports whether ts is at or after the node's expiry.
func (x *TimeNode) IsExpire(ts time.Time) bool {
	return !ts.Before(x.expire)
}

// Linked reports whether the node currently sits in a list.
func (x *TimeNode) Linked() bool {
	return x.next != nil && x.next != x
}

// RemoveSelf unlinks the node from whatever list holds it, returning true if
// the former predecessor and successor are the same node, i.e. the list the
// node was removed from is now empty. That is a statement about the node's
// former list only. Removing an unlinked node is a no-op that returns true.
//
// RemoveSelf writes to the neighbouring nodes, so it must be serialized with
// every other operation on the list. For a node armed on an IoCtx, use
// IoCtx.CancelTimeOut instead.
func (x *TimeNode) RemoveSelf() bool {
	x.lazyInit()
	prev, next := x.prev, x.next
	next.prev = prev
	prev.next = next
	x.next = x
	x.prev = x
	return prev == next
}

// insertAfter links node directly after x.
func (x *TimeNode) insertAfter(node *TimeNode) {
	next := x.next
	node.next = next
	node.prev = x
	x.next = node
	next.prev = node
}

// TimeQueue is a circular FIFO of TimeNode values sharing one fixed duration.
//
// Because every node gets the same duration, tail insertion order is expiry
// order: Push, Pop, Front, and the node's own RemoveSelf are all O(1).
//
// TimeQueue is not safe for concurrent use. The zero value is not ready for
// use; construct one with NewTimeQueue.
type TimeQueue struct {
	head     TimeNode
	clock    func() time.Time
	duration time.Duration
}

// NewTimeQueue returns an empty queue applying d to every pushed node. A nil
// clock defaults to time.Now.
func NewTimeQueue(d time.Duration, clock func() time.Time) *TimeQueue {
	q := new(TimeQueue)
	q.init(d, clock)
	return q
}

func (x *TimeQueue) init(d time.Duration, clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	x.head.Init()
	x.clock = clock
	x.duration = d
}

// Duration returns the fixed duration applied by Push.
func (x *TimeQueue) Duration() time.Duration { return x.duration }

// Push stamps node with now + Duration and appends it at the tail.
//
// Pushing a node that is still linked panics with ErrTimeNodeLinked.
func (x *TimeQueue) Push(node *TimeNode) {
	if node.Linked() {
		panic(ErrTimeNodeLinked)
	}
	node.expire = x.clock().Add(x.duration)
	x.head.prev.insertAfter(node)
}

// Pop removes and returns the front node, or nil if the queue is empty.
func (x *TimeQueue) Pop() *TimeNode {
	if x.Empty() {
		return nil
	}
	node := x.head.next
	node.RemoveSelf()
	return node
}

// Front returns the earliest-expiring node, or nil if the queue is empty.
func (x *TimeQueue) Front() *TimeNode {
	if x.Empty() {
		return nil
	}
	return x.head.next
}

// Back returns the latest-expiring node, or nil if the queue is empty.
func (x *TimeQueue) Back() *TimeNode {
	if x.Empty() {
		return nil
	}
	return x.head.prev
}

// Empty reports whether the head links back to itself.
func (x *TimeQueue) Empty() bool {
	return x.head.next == &x.head
}

// expired pops the front node if it has expired at now.
func (x *TimeQueue) expired(now time.Time) *TimeNode {
	node := x.Front()
	if node == nil || !node.IsExpire(now) {
		return nil
	}
	node.RemoveSelf()
	return node
}
