// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ioctx

import (
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// DefaultTimeOut is the fixed duration of the engine's timer queue.
	DefaultTimeOut = 10 * time.Second

	// DefaultWaitCeiling bounds each blocking wait on the multiplexer.
	DefaultWaitCeiling = time.Second

	// DefaultMaxEvents is the number of readiness events collected per wait.
	DefaultMaxEvents = 5
)

// FatalHandler is invoked with a dispatch failure. If it returns, the worker
// that recovered the panic returns the error from Run.
type FatalHandler func(err *PanicError)

// options holds configuration for IoCtx creation.
type options struct {
	logger      *logiface.Logger[logiface.Event]
	fatal       FatalHandler
	clock       func() time.Time
	timeOut     time.Duration
	waitCeiling time.Duration
	maxEvents   int
}

// --- Options ---

// Option configures an IoCtx instance.
type Option interface {
	applyOption(*options) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyOptionFunc func(*options) error
}

func (o *optionImpl) applyOption(opts *options) error {
	return o.applyOptionFunc(opts)
}

// WithLogger sets the structured logger. A nil logger (the default) disables
// logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *options) error {
		opts.logger = logger
		return nil
	}}
}

// WithTimeOut sets the fixed duration applied by PostTimeOut.
func WithTimeOut(d time.Duration) Option {
	return &optionImpl{func(opts *options) error {
		if d <= 0 {
			return ErrInvalidTimeOut
		}
		opts.timeOut = d
		return nil
	}}
}

// WithWaitCeiling sets the maximum time a worker blocks in the multiplexer
// before re-checking its queues. It must not exceed the timeout duration, so
// that an expired timer is never observed more than one wait late.
func WithWaitCeiling(d time.Duration) Option {
	return &optionImpl{func(opts *options) error {
		if d <= 0 {
			return ErrInvalidWaitCeiling
		}
		opts.waitCeiling = d
		return nil
	}}
}

// WithMaxEvents sets how many readiness events a single wait may return.
func WithMaxEvents(n int) Option {
	return &optionImpl{func(opts *options) error {
		if n <= 0 {
			return ErrInvalidMaxEvents
		}
		opts.maxEvents = n
		return nil
	}}
}

// WithFatalHandler replaces the dispatch failure policy. The default logs at
// critical level then re-panics.
func WithFatalHandler(handler FatalHandler) Option {
	return &optionImpl{func(opts *options) error {
		opts.fatal = handler
		return nil
	}}
}

// WithClock sets the time source used for timer expiry.
func WithClock(clock func() time.Time) Option {
	return &optionImpl{func(opts *options) error {
		opts.clock = clock
		return nil
	}}
}

// resolveOptions applies Option instances to options.
func resolveOptions(opts []Option) (*options, error) {
	cfg := &options{
		clock:       time.Now,
		timeOut:     DefaultTimeOut,
		waitCeiling: DefaultWaitCeiling,
		maxEvents:   DefaultMaxEvents,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	if cfg.waitCeiling > cfg.timeOut {
		return nil, ErrInvalidWaitCeiling
	}
	return cfg, nil
}
