//go:build !tinygo

package hal

import (
	"image/color"
	"sync"
)

// hostFramebuffer is the simulated TFT. The firmware draws into buf; a
// Present marks the frame for the window to pick up.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte

	frames uint64
	dirty  bool
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
		dirty:  true,
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.buf }

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames++
	f.dirty = true
	return nil
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fillRGB565(f.buf, RGB565(color.RGBA{R: r, G: g, B: b, A: 0xFF}))
}

// presented returns the number of Present calls so far.
func (f *hostFramebuffer) presented() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// takeFrame copies the buffer into dst as RGBA if a frame was presented
// since the last call.
func (f *hostFramebuffer) takeFrame(dst []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirty {
		return false
	}
	f.dirty = false
	for i := 0; i+1 < len(f.buf) && i*2+3 < len(dst); i += 2 {
		c := expandRGB565(uint16(f.buf[i]) | uint16(f.buf[i+1])<<8)
		j := i * 2
		dst[j], dst[j+1], dst[j+2], dst[j+3] = c.R, c.G, c.B, c.A
	}
	return true
}
