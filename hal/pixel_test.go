package hal

import (
	"image/color"
	"testing"
)

func TestRGB565(t *testing.T) {
	for _, c := range []color.RGBA{
		{A: 0xFF},
		{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		{R: 0xFF, A: 0xFF},
		{G: 0xFF, A: 0xFF},
		{B: 0xFF, A: 0xFF},
	} {
		if got := expandRGB565(RGB565(c)); got != c {
			t.Fatalf("round trip %v = %v", c, got)
		}
	}

	buf := make([]byte, 4)
	PutRGB565(buf, 2, 0xF800)
	PutRGB565(buf, 3, 0xFFFF)
	if buf[2] != 0x00 || buf[3] != 0xF8 {
		t.Fatalf("buf = % x", buf)
	}
}
