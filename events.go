package ioctx

import (
	"strings"
)

// IOEvents is a set of readiness conditions.
type IOEvents uint32

const (
	// EventRead indicates the source is readable.
	EventRead IOEvents = 1 << iota
	// EventWrite indicates the source is writable.
	EventWrite
	// EventPriority indicates urgent data is available.
	EventPriority
	// EventError indicates an error condition. Always reported, never
	// requested.
	EventError
	// EventHangup indicates the peer closed the connection. Always reported,
	// never requested.
	EventHangup
	// EventReadHangup indicates the peer shut down its writing half.
	EventReadHangup
	// EventOneShot disarms the source after one event, until ModifyIO.
	EventOneShot
	// EventEdgeTriggered requests edge-triggered delivery.
	EventEdgeTriggered
)

var ioEventNames = [...]string{
	"read",
	"write",
	"priority",
	"error",
	"hangup",
	"readhangup",
	"oneshot",
	"edgetriggered",
}

// String renders the set as "|"-joined flag names.
func (x IOEvents) String() string {
	if x == 0 {
		return "none"
	}
	var b strings.Builder
	for i, name := range ioEventNames {
		if x&(1<<i) == 0 {
			continue
		}
		if b.Len() != 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
	}
	if rest := x &^ (1<<len(ioEventNames) - 1); rest != 0 {
		if b.Len() != 0 {
			b.WriteByte('|')
		}
		b.WriteString("unknown")
	}
	return b.String()
}

// IoEvent is one readiness event delivered to a Callback.
type IoEvent struct {
	// Events holds the conditions that became ready.
	Events IOEvents
	// Token is the completion key the source was registered under.
	Token Token
}

// String renders the event like "token=9:1 events=read|hangup".
func (x *IoEvent) String() string {
	return "token=" + x.Token.String() + " events=" + x.Events.String()
}
