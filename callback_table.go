package ioctx

import (
	"sync"
)

type tableEntry struct {
	cb  *Callback
	fd  int
	gen uint32
}

// callbackTable maps tokens to callbacks, and fds to tokens.
//
// Slots are reused through a free list. Each reuse bumps the generation, so
// an event still in flight for a released registration no longer resolves.
type callbackTable struct {
	lock    sync.Locker
	fds     map[int]Token
	entries []tableEntry
	free    []uint32
}

func (x *callbackTable) init(lock sync.Locker) {
	x.lock = lock
	x.fds = make(map[int]Token)
}

// add allocates a token binding fd to cb.
func (x *callbackTable) add(fd int, cb *Callback) (Token, error) {
	if !cb.Initialized() {
		return 0, ErrNilCallback
	}
	x.lock.Lock()
	defer x.lock.Unlock()
	if _, ok := x.fds[fd]; ok {
		return 0, ErrFDAlreadyRegistered
	}
	var index uint32
	if n := len(x.free); n != 0 {
		index = x.free[n-1]
		x.free = x.free[:n-1]
	} else {
		index = uint32(len(x.entries))
		x.entries = append(x.entries, tableEntry{})
	}
	e := &x.entries[index]
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	e.cb = cb
	e.fd = fd
	tok := makeToken(index+uint32(CallbackGuard), e.gen)
	x.fds[fd] = tok
	cb.token.Store(uint64(tok))
	return tok, nil
}

// token returns the token registered for fd.
func (x *callbackTable) token(fd int) (Token, bool) {
	x.lock.Lock()
	defer x.lock.Unlock()
	tok, ok := x.fds[fd]
	return tok, ok
}

// remove releases the registration of fd.
func (x *callbackTable) remove(fd int) (Token, error) {
	x.lock.Lock()
	defer x.lock.Unlock()
	tok, ok := x.fds[fd]
	if !ok {
		return 0, ErrFDNotRegistered
	}
	delete(x.fds, fd)
	index := tok.slot() - uint32(CallbackGuard)
	e := &x.entries[index]
	if e.cb != nil {
		e.cb.token.CompareAndSwap(uint64(tok), 0)
	}
	e.cb = nil
	e.fd = -1
	x.free = append(x.free, index)
	return tok, nil
}

// lookup resolves a token, returning nil for signals and stale tokens.
func (x *callbackTable) lookup(tok Token) *Callback {
	if tok.IsSignal() {
		return nil
	}
	index := tok.slot() - uint32(CallbackGuard)
	x.lock.Lock()
	defer x.lock.Unlock()
	if int(index) >= len(x.entries) {
		return nil
	}
	e := &x.entries[index]
	if e.gen != tok.gen() {
		return nil
	}
	return e.cb
}

func (x *callbackTable) len() int {
	x.lock.Lock()
	defer x.lock.Unlock()
	return len(x.fds)
}
