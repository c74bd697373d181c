package ioctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptions_defaults(t *testing.T) {
	cfg, err := resolveOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeOut, cfg.timeOut)
	assert.Equal(t, DefaultWaitCeiling, cfg.waitCeiling)
	assert.Equal(t, DefaultMaxEvents, cfg.maxEvents)
	assert.NotNil(t, cfg.clock)
	assert.Nil(t, cfg.logger)
	assert.Nil(t, cfg.fatal)
}

func TestResolveOptions_nilOptionSkipped(t *testing.T) {
	cfg, err := resolveOptions([]Option{nil, WithMaxEvents(7), nil})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.maxEvents)
}

func TestResolveOptions_values(t *testing.T) {
	now := time.Unix(100, 0)
	var handled bool
	cfg, err := resolveOptions([]Option{
		WithTimeOut(time.Minute),
		WithWaitCeiling(time.Minute),
		WithMaxEvents(64),
		WithClock(func() time.Time { return now }),
		WithFatalHandler(func(*PanicError) { handled = true }),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.timeOut)
	assert.Equal(t, time.Minute, cfg.waitCeiling)
	assert.Equal(t, 64, cfg.maxEvents)
	assert.Equal(t, now, cfg.clock())
	cfg.fatal(nil)
	assert.True(t, handled)
}

func TestResolveOptions_nilClockDefaults(t *testing.T) {
	cfg, err := resolveOptions([]Option{WithClock(nil)})
	require.NoError(t, err)
	require.NotNil(t, cfg.clock)
	assert.WithinDuration(t, time.Now(), cfg.clock(), time.Minute)
}

func TestResolveOptions_invalid(t *testing.T) {
	for name, tc := range map[string]struct {
		opts []Option
		err  error
	}{
		"zero timeout":           {[]Option{WithTimeOut(0)}, ErrInvalidTimeOut},
		"negative timeout":       {[]Option{WithTimeOut(-time.Second)}, ErrInvalidTimeOut},
		"zero ceiling":           {[]Option{WithWaitCeiling(0)}, ErrInvalidWaitCeiling},
		"ceiling above timeout":  {[]Option{WithTimeOut(time.Second), WithWaitCeiling(2 * time.Second)}, ErrInvalidWaitCeiling},
		"default ceiling, short": {[]Option{WithTimeOut(time.Millisecond)}, ErrInvalidWaitCeiling},
		"zero max events":        {[]Option{WithMaxEvents(0)}, ErrInvalidMaxEvents},
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := resolveOptions(tc.opts)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPanicError(t *testing.T) {
	pe := &PanicError{Value: ErrClosed, Source: "task"}
	assert.Equal(t, "ioctx: task panicked: ioctx: context has been closed", pe.Error())
	assert.ErrorIs(t, pe, ErrClosed)

	pe = &PanicError{Value: "boom", Source: "callback"}
	assert.Equal(t, "ioctx: callback panicked: boom", pe.Error())
	assert.NoError(t, pe.Unwrap())
}
