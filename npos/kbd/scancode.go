package kbd

// HID keyboard usage codes emitted by the keypad.
const (
	KeyCodeNone    uint8 = 0x00
	KeyCodeA       uint8 = 0x04
	KeyCodeZ       uint8 = 0x1D
	KeyCode1       uint8 = 0x1E
	KeyCode0       uint8 = 0x27
	KeyCodeEnter   uint8 = 0x28
	KeyCodeEscape  uint8 = 0x29
	KeyCodeSpace   uint8 = 0x2C
	KeyCodeF1      uint8 = 0x3A
	KeyCodeF12     uint8 = 0x45
	KeyCodeNumLock uint8 = 0x53

	KeyCodeKPDivide   uint8 = 0x54
	KeyCodeKPMultiply uint8 = 0x55
	KeyCodeKPSubtract uint8 = 0x56
	KeyCodeKPAdd      uint8 = 0x57
	KeyCodeKPEnter    uint8 = 0x58
	KeyCodeKP1        uint8 = 0x59
	KeyCodeKP2        uint8 = 0x5A
	KeyCodeKP3        uint8 = 0x5B
	KeyCodeKP4        uint8 = 0x5C
	KeyCodeKP5        uint8 = 0x5D
	KeyCodeKP6        uint8 = 0x5E
	KeyCodeKP7        uint8 = 0x5F
	KeyCodeKP8        uint8 = 0x60
	KeyCodeKP9        uint8 = 0x61
	KeyCodeKP0        uint8 = 0x62
	KeyCodeKPDecimal  uint8 = 0x63

	// KeyCodeInvalid marks an unmapped key in protocol replies.
	KeyCodeInvalid uint8 = 0xFF
)

// Modifier bits of the HID boot keyboard report.
const (
	ModLeftCtrl uint8 = 1 << iota
	ModLeftShift
	ModLeftAlt
	ModLeftGUI
	ModRightCtrl
	ModRightShift
	ModRightAlt
	ModRightGUI
)

// IsModifierCode reports whether code is one of the modifier usages
// (0xE0-0xE7), which are sent as mask bits instead of key slots.
func IsModifierCode(code uint8) bool { return code >= 0xE0 && code <= 0xE7 }

// ModifierBit returns the mask bit for a modifier usage code.
func ModifierBit(code uint8) uint8 {
	if !IsModifierCode(code) {
		return 0
	}
	return 1 << (code - 0xE0)
}
