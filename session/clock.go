package session

import "time"

// Ticker is a repeating tick source. Stop must be idempotent.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests replace it to drive ticks by hand.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// SystemClock is backed by time.Ticker
type SystemClock struct{}

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }
