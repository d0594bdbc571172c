//go:build tinygo && baremetal

package hal

import "image/color"

// errPanel reports a display that failed to come up.
type errPanel struct{ err error }

func (e errPanel) Error() string { return "display: " + e.err.Error() }

// offlineFramebuffer keeps a RAM frame when the panel failed to initialize
// so the console still has somewhere to draw. Present reports the failure.
type offlineFramebuffer struct {
	buf []byte
	err error
}

func newOfflineFramebuffer(err error) *offlineFramebuffer {
	return &offlineFramebuffer{buf: make([]byte, DisplayWidth*DisplayHeight*2), err: errPanel{err}}
}

func (f *offlineFramebuffer) Width() int          { return DisplayWidth }
func (f *offlineFramebuffer) Height() int         { return DisplayHeight }
func (f *offlineFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *offlineFramebuffer) StrideBytes() int    { return DisplayWidth * 2 }
func (f *offlineFramebuffer) Buffer() []byte      { return f.buf }
func (f *offlineFramebuffer) Present() error      { return f.err }

func (f *offlineFramebuffer) ClearRGB(r, g, b uint8) {
	fillRGB565(f.buf, RGB565(color.RGBA{R: r, G: g, B: b, A: 0xFF}))
}
