//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard closes matrix switches from the desktop keyboard.
//
// Holding Shift while pressing a key latches it, so chords wider than the
// desktop keyboard's rollover can be tried.
type hostKeyboard struct {
	matrix  *KeyMatrix
	hid     *hostHID
	latched []bool
}

type matrixBinding struct {
	index int
	keys  []ebiten.Key
}

// Matrix positions are row*5+col; position 22 has no switch.
var hostBindings = []matrixBinding{
	{0, []ebiten.Key{ebiten.KeyF1}},
	{1, []ebiten.Key{ebiten.KeyNumpadDivide, ebiten.KeySlash}},
	{2, []ebiten.Key{ebiten.KeyNumpadMultiply}},
	{3, []ebiten.Key{ebiten.KeyNumpadSubtract, ebiten.KeyMinus}},
	{4, []ebiten.Key{ebiten.KeyNumLock, ebiten.KeyF6}},
	{5, []ebiten.Key{ebiten.KeyF2}},
	{6, []ebiten.Key{ebiten.KeyNumpad7, ebiten.KeyDigit7}},
	{7, []ebiten.Key{ebiten.KeyNumpad8, ebiten.KeyDigit8}},
	{8, []ebiten.Key{ebiten.KeyNumpad9, ebiten.KeyDigit9}},
	{9, []ebiten.Key{ebiten.KeyNumpadAdd, ebiten.KeyEqual}},
	{10, []ebiten.Key{ebiten.KeyF3}},
	{11, []ebiten.Key{ebiten.KeyNumpad4, ebiten.KeyDigit4}},
	{12, []ebiten.Key{ebiten.KeyNumpad5, ebiten.KeyDigit5}},
	{13, []ebiten.Key{ebiten.KeyNumpad6, ebiten.KeyDigit6}},
	{14, []ebiten.Key{ebiten.KeyNumpadEnter, ebiten.KeyEnter}},
	{15, []ebiten.Key{ebiten.KeyF4}},
	{16, []ebiten.Key{ebiten.KeyNumpad1, ebiten.KeyDigit1}},
	{17, []ebiten.Key{ebiten.KeyNumpad2, ebiten.KeyDigit2}},
	{18, []ebiten.Key{ebiten.KeyNumpad3, ebiten.KeyDigit3}},
	{19, []ebiten.Key{ebiten.KeyF9}},
	{20, []ebiten.Key{ebiten.KeyF5}},
	{21, []ebiten.Key{ebiten.KeyNumpad0, ebiten.KeyDigit0}},
	{23, []ebiten.Key{ebiten.KeyNumpadDecimal, ebiten.KeyPeriod}},
	{24, []ebiten.Key{ebiten.KeyF10}},
}

func newHostKeyboard(m *KeyMatrix, hid *hostHID) *hostKeyboard {
	return &hostKeyboard{matrix: m, hid: hid, latched: make([]bool, m.Size())}
}

func (k *hostKeyboard) poll() {
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	for _, b := range hostBindings {
		down := false
		for _, key := range b.keys {
			if shift && inpututil.IsKeyJustPressed(key) {
				k.latched[b.index] = !k.latched[b.index]
			}
			if !shift && ebiten.IsKeyPressed(key) {
				down = true
			}
		}
		k.matrix.Set(b.index, down || k.latched[b.index])
	}

	// F12 plays the host toggling its NumLock LED.
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		k.hid.toggleHostLED(HostLEDNumLock)
	}
}
