// Package console renders a text terminal, or free graphics, on the keypad's
// display. Drawing happens on the caller's goroutine; pushing the frame to
// the panel is posted to the kernel queue.
package console

import (
	"image/color"
	"sync"
	"sync/atomic"

	"simplenp/hal"
	"simplenp/npos/kernel"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// Mode selects what owns the screen.
type Mode uint8

const (
	TTY Mode = iota
	Graphic
)

func (m Mode) String() string {
	if m == Graphic {
		return "graphic"
	}
	return "tty"
}

type Console struct {
	fb hal.Framebuffer
	q  *kernel.Queue

	mu   sync.Mutex
	d    *fbDisplay
	t    *tinyterm.Terminal
	mode Mode

	queued   atomic.Bool
	presents atomic.Uint32
	err      atomic.Value
}

// New returns a console in TTY mode. Without a framebuffer every call is a
// no-op. A nil q presents synchronously.
func New(disp hal.Display, q *kernel.Queue) *Console {
	c := &Console{q: q}
	if disp != nil {
		c.fb = disp.Framebuffer()
	}
	c.d = &fbDisplay{fb: c.fb}
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	return c
}

func (c *Console) resetLocked() {
	if c.fb == nil {
		return
	}
	c.fb.ClearRGB(0, 0, 0)
	c.t = tinyterm.NewTerminal(c.d)
	c.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
}

// Mode returns the current mode.
func (c *Console) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode hands the screen to the terminal or to Draw.
func (c *Console) SetMode(m Mode) {
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
}

// Clear blanks the screen and homes the terminal.
func (c *Console) Clear() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	c.invalidate()
}

// Write prints p on the terminal. Text written in Graphic mode is dropped.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	if c.t == nil || c.mode != TTY {
		c.mu.Unlock()
		return len(p), nil
	}
	_, _ = c.t.Write(p)
	c.mu.Unlock()
	c.invalidate()
	return len(p), nil
}

// Print writes s.
func (c *Console) Print(s string) { _, _ = c.Write([]byte(s)) }

// Canvas is the surface Draw hands out.
type Canvas interface {
	drivers.Displayer
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Draw runs fn against the display while in Graphic mode.
func (c *Console) Draw(fn func(cv Canvas)) {
	c.mu.Lock()
	if c.fb == nil || c.mode != Graphic {
		c.mu.Unlock()
		return
	}
	fn(c.d)
	c.mu.Unlock()
	c.invalidate()
}

// invalidate schedules one present; repeated calls before it runs coalesce.
func (c *Console) invalidate() {
	if c.fb == nil || !c.queued.CompareAndSwap(false, true) {
		return
	}
	if c.q == nil || !c.q.TryPost(c.present) {
		c.present()
	}
}

func (c *Console) present() {
	c.queued.Store(false)
	c.mu.Lock()
	err := c.fb.Present()
	c.mu.Unlock()
	c.presents.Add(1)
	if err != nil {
		c.err.Store(err)
	}
}

// Presents returns how many frames have been pushed to the panel.
func (c *Console) Presents() uint32 { return c.presents.Load() }

// Err returns the last present error, if any.
func (c *Console) Err() error {
	err, _ := c.err.Load().(error)
	return err
}
