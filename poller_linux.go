//go:build linux

package ioctx

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/sys/unix"
)

// poller is the epoll multiplexer plus the eventfd used to wake idle workers.
//
// The eventfd is created readable and never drained. It is registered
// EPOLLONESHOT, so each re-arm releases exactly one blocked worker.
type poller struct {
	epfd   int
	wakefd int
}

// waitBuffer is the per-worker scratch space for one wait.
type waitBuffer struct {
	raw []unix.EpollEvent
	out []pollEvent
}

type pollEvent struct {
	events IOEvents
	token  Token
}

func (p *poller) init() error {
	p.epfd, p.wakefd = -1, -1

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("ioctx: can't create epoll: %w", err)
	}
	p.epfd = epfd

	wakefd, err := unix.Eventfd(1, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		p.epfd = -1
		return fmt.Errorf("ioctx: can't create eventfd: %w", err)
	}
	p.wakefd = wakefd

	ev := wakeupEvent()
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		_ = p.close()
		return fmt.Errorf("ioctx: can't set wakeup event (eventfd %d, epoll %d): %w", wakefd, epfd, err)
	}

	return nil
}

func (p *poller) close() error {
	var err error
	if p.wakefd >= 0 {
		_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, p.wakefd, nil)
		err = unix.Close(p.wakefd)
		p.wakefd = -1
	}
	if p.epfd >= 0 {
		if e := unix.Close(p.epfd); err == nil {
			err = e
		}
		p.epfd = -1
	}
	return err
}

func (p *poller) handle() int { return p.epfd }

func (p *poller) wakeupHandle() int { return p.wakefd }

// wakeup re-arms the oneshot wakeup registration.
func (p *poller) wakeup() error {
	ev := wakeupEvent()
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, p.wakefd, &ev); err != nil {
		return fmt.Errorf("ioctx: can't set wakeup event (eventfd %d, epoll %d): %w", p.wakefd, p.epfd, err)
	}
	return nil
}

func (p *poller) add(fd int, events IOEvents, tok Token) error {
	ev := tokenEvent(events, tok)
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *poller) modify(fd int, events IOEvents, tok Token) error {
	ev := tokenEvent(events, tok)
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *poller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *poller) newWaitBuffer(maxEvents int) waitBuffer {
	return waitBuffer{
		raw: make([]unix.EpollEvent, maxEvents),
		out: make([]pollEvent, 0, maxEvents),
	}
}

// wait blocks for at most timeout. An interrupted wait returns no events and
// no error.
func (p *poller) wait(buf *waitBuffer, timeout time.Duration) ([]pollEvent, error) {
	n, err := unix.EpollWait(p.epfd, buf.raw, timeoutMillis(timeout))
	if err != nil {
		if err == unix.EINTR {
			return buf.out[:0], nil
		}
		return nil, fmt.Errorf("ioctx: epoll_wait error: %w", err)
	}
	out := buf.out[:0]
	for i := 0; i < n; i++ {
		raw := &buf.raw[i]
		out = append(out, pollEvent{
			events: epollToEvents(raw.Events),
			token:  Token(uint64(uint32(raw.Pad))<<32 | uint64(uint32(raw.Fd))),
		})
	}
	buf.out = out
	return out, nil
}

// timeoutMillis converts to epoll's millisecond timeout, rounding partial
// milliseconds up so a short wait never becomes a busy poll. The result is
// clamped to the range of a C int, where a negative value means forever.
func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}

func wakeupEvent() unix.EpollEvent {
	return unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLONESHOT,
		Fd:     int32(wakeupToken),
	}
}

func tokenEvent(events IOEvents, tok Token) unix.EpollEvent {
	return unix.EpollEvent{
		Events: eventsToEpoll(events),
		Fd:     int32(tok.slot()),
		Pad:    int32(tok.gen()),
	}
}

// eventsToEpoll converts IOEvents to epoll event flags.
func eventsToEpoll(events IOEvents) uint32 {
	var epollEvents uint32
	if events&EventRead != 0 {
		epollEvents |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		epollEvents |= unix.EPOLLOUT
	}
	if events&EventPriority != 0 {
		epollEvents |= unix.EPOLLPRI
	}
	if events&EventReadHangup != 0 {
		epollEvents |= unix.EPOLLRDHUP
	}
	if events&EventOneShot != 0 {
		epollEvents |= unix.EPOLLONESHOT
	}
	if events&EventEdgeTriggered != 0 {
		epollEvents |= unix.EPOLLET
	}
	return epollEvents
}

// epollToEvents converts epoll event flags to IOEvents.
func epollToEvents(epollEvents uint32) IOEvents {
	var events IOEvents
	if epollEvents&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if epollEvents&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if epollEvents&unix.EPOLLPRI != 0 {
		events |= EventPriority
	}
	if epollEvents&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if epollEvents&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	if epollEvents&unix.EPOLLRDHUP != 0 {
		events |= EventReadHangup
	}
	return events
}
