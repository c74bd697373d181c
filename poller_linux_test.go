//go:build linux

package ioctx

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPoller_wakeupIsOneShot(t *testing.T) {
	var p poller
	require.NoError(t, p.init())
	defer p.close()

	buf := p.newWaitBuffer(DefaultMaxEvents)

	// created readable, so the first wait consumes the initial signal
	events, err := p.wait(&buf, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, wakeupToken, events[0].token)
	assert.True(t, events[0].token.IsSignal())

	// disarmed until re-armed
	events, err = p.wait(&buf, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, p.wakeup())
	events, err = p.wait(&buf, time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, wakeupToken, events[0].token)

	events, err = p.wait(&buf, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestPoller_tokenRoundTrip(t *testing.T) {
	var p poller
	require.NoError(t, p.init())
	defer p.close()

	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	tok := makeToken(uint32(CallbackGuard)+3, 0xdeadbeef)
	require.NoError(t, p.add(fds[0], EventRead, tok))
	_, err := unix.Write(fds[1], []byte{1})
	require.NoError(t, err)

	buf := p.newWaitBuffer(DefaultMaxEvents)
	var got []pollEvent
	require.Eventually(t, func() bool {
		events, err := p.wait(&buf, 10*time.Millisecond)
		if err != nil {
			return false
		}
		for _, evt := range events {
			if !evt.token.IsSignal() {
				got = append(got, evt)
			}
		}
		return len(got) != 0
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, tok, got[0].token)
	assert.Equal(t, EventRead, got[0].events)

	require.NoError(t, p.remove(fds[0]))
	assert.Error(t, p.remove(fds[0]))
}

func TestPoller_closeReleasesHandles(t *testing.T) {
	var p poller
	require.NoError(t, p.init())
	assert.GreaterOrEqual(t, p.handle(), 0)
	assert.GreaterOrEqual(t, p.wakeupHandle(), 0)
	require.NoError(t, p.close())
	assert.Equal(t, -1, p.handle())
	assert.Equal(t, -1, p.wakeupHandle())
	require.NoError(t, p.close())
}

func TestTimeoutMillis(t *testing.T) {
	for _, tc := range [...]struct {
		d    time.Duration
		want int
	}{
		{-1, -1},
		{0, 0},
		{time.Nanosecond, 1},
		{time.Millisecond, 1},
		{time.Millisecond + 1, 2},
		{time.Second, 1000},
		{24 * time.Hour, 86400000},
		{30 * 24 * time.Hour, math.MaxInt32},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	} {
		if got := timeoutMillis(tc.d); got != tc.want {
			t.Errorf("timeoutMillis(%s) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestEpollEventConversion(t *testing.T) {
	all := EventRead | EventWrite | EventPriority | EventReadHangup
	assert.Equal(t, all, epollToEvents(eventsToEpoll(all)))

	raw := eventsToEpoll(EventRead | EventOneShot | EventEdgeTriggered)
	assert.NotZero(t, raw&unix.EPOLLONESHOT)
	assert.NotZero(t, raw&unix.EPOLLET)
	assert.Equal(t, EventRead, epollToEvents(raw))

	assert.Equal(t, EventError|EventHangup, epollToEvents(unix.EPOLLERR|unix.EPOLLHUP))
}
