// ABOUTME: Engine timebase abstraction
// ABOUTME: Monotonic millisecond clock with a swappable implementation
package mixer

import "time"

// Clock supplies the engine timebase in monotonic milliseconds. Channel
// ages, timeouts and fades are all measured against it, so tests can swap
// in a manual clock.
type Clock interface {
	NowMs() int64
}

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock over the process monotonic clock.
func NewSystemClock() Clock {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) NowMs() int64 {
	return time.Since(c.start).Milliseconds()
}
