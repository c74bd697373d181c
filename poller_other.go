//go:build !linux

package ioctx

import (
	"time"
)

type poller struct{}

type waitBuffer struct{}

type pollEvent struct {
	events IOEvents
	token  Token
}

func (p *poller) init() error { return ErrUnsupportedPlatform }

func (p *poller) close() error { return nil }

func (p *poller) handle() int { return -1 }

func (p *poller) wakeupHandle() int { return -1 }

func (p *poller) wakeup() error { return ErrUnsupportedPlatform }

func (p *poller) add(int, IOEvents, Token) error { return ErrUnsupportedPlatform }

func (p *poller) modify(int, IOEvents, Token) error { return ErrUnsupportedPlatform }

func (p *poller) remove(int) error { return ErrUnsupportedPlatform }

func (p *poller) newWaitBuffer(int) waitBuffer { return waitBuffer{} }

func (p *poller) wait(*waitBuffer, time.Duration) ([]pollEvent, error) {
	return nil, ErrUnsupportedPlatform
}
