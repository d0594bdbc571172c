//go:build !tinygo

package hal

import "time"

const tickPeriod = time.Millisecond

// hostClock feeds the millisecond tick stream. The window follows the wall
// clock; the headless runner advances it by a fixed amount per step so
// scripted runs see the same ticks every time.
type hostClock struct {
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostClock() *hostClock {
	return &hostClock{ch: make(chan uint64, 1024)}
}

func (c *hostClock) Ticks() <-chan uint64 { return c.ch }

// sync emits the ticks that elapsed on the wall clock since the last call.
func (c *hostClock) sync() {
	now := time.Now()
	if c.last.IsZero() {
		c.last = now
		c.emit(1)
		return
	}
	c.acc += now.Sub(c.last)
	c.last = now
	c.drainAcc()
}

// advance emits the ticks covered by d, carrying any remainder.
func (c *hostClock) advance(d time.Duration) {
	c.acc += d
	c.drainAcc()
}

func (c *hostClock) drainAcc() {
	n := uint64(c.acc / tickPeriod)
	c.acc %= tickPeriod
	c.emit(n)
}

// emit drops ticks the firmware hasn't drained; seq keeps counting so the
// clock doesn't fall behind.
func (c *hostClock) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		c.seq++
		select {
		case c.ch <- c.seq:
		default:
		}
	}
}
