package ioctx

import (
	"strconv"
)

// Token is the completion key carried by a readiness event. The low 32 bits
// select a callback table slot, the high 32 bits hold the slot's generation.
type Token uint64

const (
	// CallbackGuard is the smallest Token that can name a Callback. Smaller
	// keys are reserved for engine signals.
	CallbackGuard Token = 8

	// wakeupToken tags the inter-thread wakeup source.
	wakeupToken Token = 1
)

func makeToken(slot, gen uint32) Token {
	return Token(uint64(gen)<<32 | uint64(slot))
}

func (x Token) slot() uint32 { return uint32(x) }

func (x Token) gen() uint32 { return uint32(x >> 32) }

// IsSignal reports whether the token is reserved for engine signalling.
func (x Token) IsSignal() bool { return x < CallbackGuard }

// String renders the token as "slot:generation".
func (x Token) String() string {
	return strconv.FormatUint(uint64(x.slot()), 10) + ":" + strconv.FormatUint(uint64(x.gen()), 10)
}
