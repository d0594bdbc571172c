//go:build !tinygo && cgo

package hal

import (
	"image"
	"image/color"

	"simplenp/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	windowScale = 4
	ledStripH   = 10
)

// RunWindow starts a desktop window that displays the framebuffer and the
// LED row and forwards keyboard input to the switch matrix.
// It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, host HostConfig) error {
	h, err := newHost(host)
	if err != nil {
		return err
	}
	defer h.close()
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("SimpleNP (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*windowScale, (h.fb.height+ledStripH)*windowScale)
	ebiten.SetTPS(200)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h      *hostHAL
	img    *image.RGBA
	fbImg  *ebiten.Image
	ledImg *ebiten.Image
	step   func() error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.sync()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}
	if fb.takeFrame(g.img.Pix) {
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
	g.drawLEDs(screen)
}

// drawLEDs paints the shift-register LEDs under the display. The bank is
// active-low: a cleared bit is a lit LED.
func (g *hostGame) drawLEDs(screen *ebiten.Image) {
	const size = 6
	if g.ledImg == nil {
		g.ledImg = ebiten.NewImage(size, size)
	}
	mask := g.h.leds.snapshot()
	n := g.h.leds.Count()
	pitch := g.h.fb.width / n
	for i := 0; i < n; i++ {
		c := color.RGBA{0x30, 0x30, 0x30, 0xFF}
		if mask&(1<<i) == 0 {
			c = color.RGBA{0x20, 0xE0, 0x40, 0xFF}
		}
		g.ledImg.Fill(c)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(i*pitch+(pitch-size)/2), float64(g.h.fb.height+(ledStripH-size)/2))
		screen.DrawImage(g.ledImg, op)
	}
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height + ledStripH
}
