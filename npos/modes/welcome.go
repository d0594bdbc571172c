package modes

import (
	"image/color"

	"simplenp/npos/kbd"
	"simplenp/npos/services/console"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Frame is one timed welcome screen: Text types itself out over the middle
// of the frame's duration.
type Frame struct {
	DurationMs uint32
	Text       string
	X, Y       int16
}

// DefaultFrames is the boot greeting.
var DefaultFrames = []Frame{
	{DurationMs: 5000, Text: "SimpleNP", X: 8, Y: 34},
	{DurationMs: 5000, Text: "numpad ready", X: 8, Y: 54},
}

var (
	welcomeFG = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	welcomeBG = color.RGBA{A: 0xFF}
)

// Welcome plays the greeting with input frozen, then switches to next.
type Welcome struct {
	sw     *Switcher
	next   Mode
	kb     *kbd.Keyboard
	host   kbd.Listener
	con    *console.Console
	now    func() uint32
	frames []Frame

	tick    uint32
	elapsed uint32
	shown   int
	frame   int
}

func NewWelcome(sw *Switcher, next Mode, kb *kbd.Keyboard, host kbd.Listener, con *console.Console, now func() uint32, frames []Frame) *Welcome {
	if frames == nil {
		frames = DefaultFrames
	}
	return &Welcome{sw: sw, next: next, kb: kb, host: host, con: con, now: now, frames: frames}
}

func (w *Welcome) Name() string { return "welcome" }

func (w *Welcome) Enter() bool {
	if w.host != nil {
		w.kb.Unlisten(w.host)
	}
	if w.con != nil {
		w.con.SetMode(console.Graphic)
		w.con.Clear()
	}
	w.kb.Disable()

	w.tick = w.now()
	w.elapsed = 0
	w.shown, w.frame = -1, -1
	return true
}

func (w *Welcome) Leave() {}

// current returns the frame index for the elapsed time and its progress in
// [0,1]; ended is set once every frame has run.
func (w *Welcome) current() (idx int, progress float32, ended bool) {
	var end uint32
	idx = -1
	for i, f := range w.frames {
		if end > w.elapsed {
			break
		}
		end += f.DurationMs
		idx = i
	}
	if idx >= 0 && w.frames[idx].DurationMs > 0 {
		var left uint32
		if end > w.elapsed {
			left = end - w.elapsed
		}
		progress = 1 - float32(left)/float32(w.frames[idx].DurationMs)
		progress = min(max(progress, 0), 1)
	}
	return idx, progress, end <= w.elapsed
}

func (w *Welcome) StepOnce() {
	now := w.now()
	w.elapsed += now - w.tick
	w.tick = now

	idx, progress, ended := w.current()
	if ended {
		w.sw.Set(w.next)
		return
	}
	if idx < 0 {
		return
	}
	w.draw(idx, progress)
}

// draw types the frame's text: nothing for the first 10%, all of it from 90%.
func (w *Welcome) draw(idx int, progress float32) {
	f := w.frames[idx]
	p := min(max(progress-0.1, 0), 0.8) / 0.8
	visible := int(p * float32(len(f.Text)))
	if idx == w.frame && visible == w.shown {
		return
	}
	clearAll := idx != w.frame
	w.frame, w.shown = idx, visible

	if w.con == nil {
		return
	}
	w.con.Draw(func(cv console.Canvas) {
		if clearAll {
			sx, sy := cv.Size()
			_ = cv.FillRectangle(0, 0, sx, sy, welcomeBG)
		}
		tinyfont.WriteLine(cv, &proggy.TinySZ8pt7b, f.X, f.Y, f.Text[:visible], welcomeFG)
	})
}
