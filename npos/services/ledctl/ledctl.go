// Package ledctl keeps the indicator LED state and pushes it to the LED
// bank when it changes.
package ledctl

import (
	"sync"

	"simplenp/hal"
	"simplenp/npos/board"
)

// Controller tracks the wanted state of up to eight LEDs. The bank is wired
// active-low, so a lit LED is a cleared bit in the mask written out.
type Controller struct {
	bank hal.LEDBank

	mu   sync.Mutex
	next uint8
	cur  uint8
	err  error
}

// New returns a controller with every LED off. The first UpdateOnce writes
// the bank.
func New(bank hal.LEDBank) *Controller {
	// cur differs from next so the first update always shifts out.
	return &Controller{bank: bank, next: 0xFF, cur: 0x00}
}

func (c *Controller) valid(led int) bool {
	if led < 0 || led >= board.LEDCount {
		return false
	}
	if c.bank != nil && led >= c.bank.Count() {
		return false
	}
	return true
}

// Set turns led on or off. Out of range LEDs are ignored.
func (c *Controller) Set(led int, on bool) {
	if !c.valid(led) {
		return
	}
	mask := uint8(1) << led

	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.next &^= mask
	} else {
		c.next |= mask
	}
}

// Get reports whether led is on.
func (c *Controller) Get(led int) bool {
	if !c.valid(led) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next&(1<<led) == 0
}

// Toggle flips led and returns its new state.
func (c *Controller) Toggle(led int) bool {
	if !c.valid(led) {
		return false
	}
	mask := uint8(1) << led

	c.mu.Lock()
	defer c.mu.Unlock()
	c.next ^= mask
	return c.next&mask == 0
}

// Mask returns the active-low mask that UpdateOnce will write.
func (c *Controller) Mask() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// UpdateOnce writes the mask to the bank if it changed since the last
// successful write. It reports whether a write happened.
func (c *Controller) UpdateOnce() bool {
	c.mu.Lock()
	next := c.next
	if next == c.cur {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	if c.bank != nil {
		if err := c.bank.WriteMask(next); err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return false
		}
	}

	c.mu.Lock()
	c.cur = next
	c.err = nil
	c.mu.Unlock()
	return true
}

// Err returns the last bank write error, cleared by the next good write.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
