package ioctx

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Log categories subject to rate limiting.
const (
	logCategoryStaleToken  = "stale-token"
	logCategoryWakeupError = "wakeup-error"
)

// logRates bounds how often a single category may be logged.
var logRates = map[time.Duration]int{
	time.Second: 2,
	time.Minute: 20,
}

// ctxLogger wraps the configured logiface logger. A nil logger is valid and
// discards everything.
type ctxLogger struct {
	log     *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter
}

func newCtxLogger(log *logiface.Logger[logiface.Event]) ctxLogger {
	x := ctxLogger{log: log}
	if log != nil {
		x.limiter = catrate.NewLimiter(logRates)
	}
	return x
}

// limited returns a builder for the category, or nil if the category has
// exceeded its rate.
func (x ctxLogger) limited(level logiface.Level, category string) *logiface.Builder[logiface.Event] {
	b := x.log.Build(level)
	if !b.Enabled() {
		return nil
	}
	if _, ok := x.limiter.Allow(category); !ok {
		b.Release()
		return nil
	}
	return b.Str("category", category)
}
