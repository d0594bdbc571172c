package hal

import "image/color"

// RGB565 packs c into the framebuffer's pixel format, rrrrrggggggbbbbb.
func RGB565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// PutRGB565 stores p little-endian at byte offset off of buf. Offsets that
// don't fit are ignored.
func PutRGB565(buf []byte, off int, p uint16) {
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

// fillRGB565 sets every pixel of buf to p.
func fillRGB565(buf []byte, p uint16) {
	lo, hi := byte(p), byte(p>>8)
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i] = lo
		buf[i+1] = hi
	}
}

// expandRGB565 widens p back to 8 bits per channel.
func expandRGB565(p uint16) color.RGBA {
	return color.RGBA{
		R: uint8(((p >> 11) & 0x1F) * 255 / 31),
		G: uint8(((p >> 5) & 0x3F) * 255 / 63),
		B: uint8((p & 0x1F) * 255 / 31),
		A: 0xFF,
	}
}
