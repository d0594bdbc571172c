package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"simplenp/hal"
	"simplenp/npos/logger"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	panicLineHeight = 10
	panicBaseline   = 7
)

// showPanic logs v and its stack, then paints them black on white.
func showPanic(h hal.HAL, log logger.Logger, v any, stack []byte) {
	log.Tee(nil)

	lines := []string{"SimpleNP panic:", fmt.Sprintf("%v", v)}
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	for _, line := range lines {
		log.Println(line)
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	fb.ClearRGB(255, 255, 255)

	font := &proggy.TinySZ8pt7b
	_, glyphW := tinyfont.LineWidth(font, "0")
	if glyphW == 0 {
		_ = fb.Present()
		return
	}
	cols := int16(fb.Width()) / int16(glyphW)
	d := panicDisplay{fb: fb}
	fg := color.RGBA{A: 0xFF}

	var y int16
	for _, line := range lines {
		for len(line) > 0 {
			if int(y)+panicLineHeight > fb.Height() {
				_ = fb.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			var x int16
			for _, r := range chunk {
				tinyfont.DrawChar(d, font, x, y+panicBaseline, r, fg)
				x += int16(glyphW)
			}
			y += panicLineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = fb.Present()
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	hal.PutRGB565(d.fb.Buffer(), iy*d.fb.StrideBytes()+ix*2, hal.RGB565(c))
}

func (d panicDisplay) Display() error { return nil }

// takeRunes splits s after n runes.
func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 {
		return s, ""
	}
	i := 0
	for count := int16(0); i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
