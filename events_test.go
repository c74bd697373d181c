package ioctx

import (
	"testing"
)

func TestIOEvents_String(t *testing.T) {
	for _, tc := range [...]struct {
		events IOEvents
		want   string
	}{
		{0, "none"},
		{EventRead, "read"},
		{EventWrite, "write"},
		{EventRead | EventWrite, "read|write"},
		{EventError | EventHangup | EventReadHangup, "error|hangup|readhangup"},
		{EventRead | EventOneShot | EventEdgeTriggered, "read|oneshot|edgetriggered"},
		{1 << 20, "unknown"},
		{EventPriority | 1<<20, "priority|unknown"},
	} {
		if got := tc.events.String(); got != tc.want {
			t.Errorf("IOEvents(%#x).String() = %q, want %q", uint32(tc.events), got, tc.want)
		}
	}
}

func TestIoEvent_String(t *testing.T) {
	evt := &IoEvent{Events: EventRead | EventHangup, Token: makeToken(9, 1)}
	if got, want := evt.String(), "token=9:1 events=read|hangup"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestContextState_String(t *testing.T) {
	for state, want := range map[ContextState]string{
		StateAwake:       "Awake",
		StateRunning:     "Running",
		StateAborting:    "Aborting",
		StateClosed:      "Closed",
		ContextState(99): "Unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("%d: got %q, want %q", state, got, want)
		}
	}
}

func TestFastState_transitions(t *testing.T) {
	var s fastState
	if s.Load() != StateAwake {
		t.Fatal("zero value should be awake")
	}
	if !s.TryTransition(StateAwake, StateRunning) {
		t.Fatal("awake -> running should succeed")
	}
	if s.TryTransition(StateAwake, StateRunning) {
		t.Fatal("second awake -> running should fail")
	}
	if !s.TransitionAny([]ContextState{StateAwake, StateRunning}, StateAborting) {
		t.Fatal("running -> aborting should succeed")
	}
	if s.TransitionAny([]ContextState{StateAwake, StateRunning}, StateAborting) {
		t.Fatal("aborting is not a valid source")
	}
	s.Store(StateClosed)
	if s.Load() != StateClosed {
		t.Fatal("store failed")
	}
}
