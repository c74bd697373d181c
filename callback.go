package ioctx

import (
	"sync/atomic"
)

// Handler is implemented by I/O objects that own a Callback.
type Handler interface {
	OnCallback(evt *IoEvent)
}

// CallbackFunc is the trampoline signature stored in a Callback.
type CallbackFunc func(self *Callback, evt *IoEvent)

// Callback is the dispatch record for one pending I/O interest.
//
// Its single dispatch slot is installed once, at construction, and never
// reassigned. The engine never reconstructs a Callback from the raw event:
// the event carries a Token, and the Token indexes a side table holding the
// *Callback.
type Callback struct {
	fn    CallbackFunc
	impl  any
	token atomic.Uint64
}

// NewCallback returns a record dispatching to h.OnCallback.
func NewCallback[H Handler](h H) *Callback {
	c := new(Callback)
	InitCallback(c, h)
	return c
}

// NewCallbackFunc returns a record dispatching to fn.
func NewCallbackFunc(fn func(evt *IoEvent)) *Callback {
	return &Callback{fn: invokeFuncCallback, impl: fn}
}

// InitCallback installs the trampoline for h into c, for records embedded in
// a longer-lived object. It panics with ErrCallbackInitialized if c already
// has a dispatch slot.
func InitCallback[H Handler](c *Callback, h H) {
	if c.fn != nil {
		panic(ErrCallbackInitialized)
	}
	c.fn = invokeImplCallback[H]
	c.impl = h
}

func invokeImplCallback[H Handler](self *Callback, evt *IoEvent) {
	self.impl.(H).OnCallback(evt)
}

func invokeFuncCallback(self *Callback, evt *IoEvent) {
	self.impl.(func(evt *IoEvent))(evt)
}

// Callback invokes the installed trampoline.
func (x *Callback) Callback(evt *IoEvent) {
	x.fn(x, evt)
}

// Initialized reports whether a dispatch slot has been installed.
func (x *Callback) Initialized() bool {
	return x != nil && x.fn != nil
}

// Token returns the key of the current registration, or the zero Token if
// the record is not registered. It is safe to call while another goroutine
// registers or unregisters the record.
func (x *Callback) Token() Token { return Token(x.token.Load()) }
