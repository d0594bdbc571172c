//go:build bootdebug

package app

import (
	"image/color"
	"sync"
	"time"

	"simplenp/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	bootDiagMu   sync.Mutex
	bootDiagStep string
	bootDiagOnce sync.Once
)

// bootStep records how far init got. The step is repeated on the debug log
// every 250ms so it can be caught after a hang, and painted on the display.
func bootStep(h hal.HAL, msg string) {
	bootDiagMu.Lock()
	bootDiagStep = msg
	bootDiagMu.Unlock()
	if h == nil {
		return
	}
	bootDiagOnce.Do(func() { go bootDiagLoop(h.Logger()) })

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	fb.ClearRGB(0, 0, 0)
	d := panicDisplay{fb: fb}
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 0, panicBaseline, "SimpleNP boot", fg)
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 0, panicLineHeight+panicBaseline, msg, fg)
	_ = fb.Present()
}

func bootDiagLoop(l hal.Logger) {
	if l == nil {
		return
	}
	for {
		bootDiagMu.Lock()
		step := bootDiagStep
		bootDiagMu.Unlock()
		if step == "" {
			step = "<empty>"
		}
		l.WriteLineString("bootdiag: " + step)
		time.Sleep(250 * time.Millisecond)
	}
}
