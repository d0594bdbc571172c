//go:build tinygo && baremetal

package hal

import (
	"errors"
	"image/color"
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7735"
)

// st7735Framebuffer keeps an RGB565 little-endian buffer in RAM and pushes it
// to the panel on Present.
type st7735Framebuffer struct {
	dev    st7735.Device
	width  int
	height int
	buf    []byte
	tx     []byte
}

func newST7735Framebuffer() (*st7735Framebuffer, error) {
	if machine.SPI0 == nil {
		return nil, errors.New("SPI0 unavailable")
	}
	if err := machine.SPI0.Configure(machine.SPIConfig{
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		Frequency: 24_000_000,
	}); err != nil {
		return nil, err
	}

	dev := st7735.New(machine.SPI0, machine.GP21, machine.GP20, machine.GP17, machine.GP28)
	dev.Configure(st7735.Config{
		Model:    st7735.MINI80x160,
		Rotation: drivers.Rotation90,
	})

	w, h := DisplayWidth, DisplayHeight
	fb := &st7735Framebuffer{
		dev:    dev,
		width:  w,
		height: h,
		buf:    make([]byte, w*h*2),
		tx:     make([]byte, w*h*2),
	}
	return fb, nil
}

func (f *st7735Framebuffer) Width() int          { return f.width }
func (f *st7735Framebuffer) Height() int         { return f.height }
func (f *st7735Framebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *st7735Framebuffer) StrideBytes() int    { return f.width * 2 }
func (f *st7735Framebuffer) Buffer() []byte      { return f.buf }

func (f *st7735Framebuffer) ClearRGB(r, g, b uint8) {
	fillRGB565(f.buf, RGB565(color.RGBA{R: r, G: g, B: b, A: 0xFF}))
}

func (f *st7735Framebuffer) Present() error {
	// The firmware stores RGB565 little-endian. The panel expects big-endian.
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.tx[i] = f.buf[i+1]
		f.tx[i+1] = f.buf[i]
	}
	return f.dev.DrawRGBBitmap8(0, 0, f.tx, int16(f.width), int16(f.height))
}
