package config

import (
	"fmt"
	"strconv"
	"strings"

	"simplenp/npos/kbd"
)

var namedKeys = map[string]uint8{
	"ENTER":     kbd.KeyCodeEnter,
	"ESC":       kbd.KeyCodeEscape,
	"ESCAPE":    kbd.KeyCodeEscape,
	"BACKSPACE": 0x2A,
	"TAB":       0x2B,
	"SPACE":     kbd.KeyCodeSpace,
	"MINUS":     0x2D,
	"EQUAL":     0x2E,
	"PRINT":     0x46,
	"SCROLL":    0x47,
	"PAUSE":     0x48,
	"INSERT":    0x49,
	"HOME":      0x4A,
	"PAGEUP":    0x4B,
	"DELETE":    0x4C,
	"END":       0x4D,
	"PAGEDOWN":  0x4E,
	"RIGHT":     0x4F,
	"LEFT":      0x50,
	"DOWN":      0x51,
	"UP":        0x52,
	"NUMLOCK":   kbd.KeyCodeNumLock,
	"KP_DIVIDE": kbd.KeyCodeKPDivide,
	"KP_MUL":    kbd.KeyCodeKPMultiply,
	"KP_MINUS":  kbd.KeyCodeKPSubtract,
	"KP_PLUS":   kbd.KeyCodeKPAdd,
	"KP_ENTER":  kbd.KeyCodeKPEnter,
	"KP_DOT":    kbd.KeyCodeKPDecimal,
	"MUTE":      0x7F,
	"VOLUP":     0x80,
	"VOLDOWN":   0x81,
	"LCTRL":     0xE0,
	"LSHIFT":    0xE1,
	"LALT":      0xE2,
	"LGUI":      0xE3,
	"RCTRL":     0xE4,
	"RSHIFT":    0xE5,
	"RALT":      0xE6,
	"RGUI":      0xE7,
}

var modifierNames = map[string]uint8{
	"CTRL":   kbd.ModLeftCtrl,
	"LCTRL":  kbd.ModLeftCtrl,
	"SHIFT":  kbd.ModLeftShift,
	"LSHIFT": kbd.ModLeftShift,
	"ALT":    kbd.ModLeftAlt,
	"LALT":   kbd.ModLeftAlt,
	"GUI":    kbd.ModLeftGUI,
	"LGUI":   kbd.ModLeftGUI,
	"RCTRL":  kbd.ModRightCtrl,
	"RSHIFT": kbd.ModRightShift,
	"RALT":   kbd.ModRightAlt,
	"RGUI":   kbd.ModRightGUI,
}

// ParseKey returns the HID usage code for a key name: a letter, a digit,
// F1-F24, KP0-KP9, one of the named keys, or a 0x-prefixed code.
func ParseKey(name string) (uint8, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case s == "":
		return 0, fmt.Errorf("empty key name")
	case strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil || uint8(v) == kbd.KeyCodeInvalid {
			return 0, fmt.Errorf("key %q: bad code", name)
		}
		return uint8(v), nil
	case len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z':
		return kbd.KeyCodeA + s[0] - 'A', nil
	case len(s) == 1 && s[0] >= '1' && s[0] <= '9':
		return kbd.KeyCode1 + s[0] - '1', nil
	case s == "0":
		return kbd.KeyCode0, nil
	case len(s) == 3 && strings.HasPrefix(s, "KP") && s[2] >= '0' && s[2] <= '9':
		if s[2] == '0' {
			return kbd.KeyCodeKP0, nil
		}
		return kbd.KeyCodeKP1 + s[2] - '1', nil
	case strings.HasPrefix(s, "F"):
		n, err := strconv.Atoi(s[1:])
		if err == nil && n >= 1 && n <= 12 {
			return kbd.KeyCodeF1 + uint8(n-1), nil
		}
		if err == nil && n >= 13 && n <= 24 {
			return 0x68 + uint8(n-13), nil
		}
	}
	if c, ok := namedKeys[s]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// KeyName is the inverse of ParseKey. Codes without a name print as 0xNN.
func KeyName(code uint8) string {
	switch {
	case code >= kbd.KeyCodeA && code <= kbd.KeyCodeZ:
		return string(rune('A' + code - kbd.KeyCodeA))
	case code >= kbd.KeyCode1 && code < kbd.KeyCode0:
		return string(rune('1' + code - kbd.KeyCode1))
	case code == kbd.KeyCode0:
		return "0"
	case code >= kbd.KeyCodeF1 && code <= kbd.KeyCodeF12:
		return "F" + strconv.Itoa(int(code-kbd.KeyCodeF1)+1)
	case code >= 0x68 && code <= 0x73:
		return "F" + strconv.Itoa(int(code-0x68)+13)
	case code >= kbd.KeyCodeKP1 && code <= kbd.KeyCodeKP9:
		return "KP" + string(rune('1'+code-kbd.KeyCodeKP1))
	case code == kbd.KeyCodeKP0:
		return "KP0"
	}
	best := ""
	for name, c := range namedKeys {
		// ESC and ESCAPE share a code; pick the shorter name.
		if c == code && (best == "" || len(name) < len(best)) {
			best = name
		}
	}
	if best != "" {
		return best
	}
	return fmt.Sprintf("0x%02X", code)
}

// ParseMods ORs the modifier bits named in mods.
func ParseMods(mods []string) (uint8, error) {
	var m uint8
	for _, name := range mods {
		bit, ok := modifierNames[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", name)
		}
		m |= bit
	}
	return m, nil
}

// ModNames lists the modifiers set in m, left side first.
func ModNames(m uint8) []string {
	names := []string{"lctrl", "lshift", "lalt", "lgui", "rctrl", "rshift", "ralt", "rgui"}
	var out []string
	for i, n := range names {
		if m&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	return out
}

// ParseMode maps none, toggle and oneshot to toggle modes.
func ParseMode(s string) (kbd.ToggleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return kbd.ToggleNone, nil
	case "toggle":
		return kbd.ToggleToggle, nil
	case "oneshot", "one-shot":
		return kbd.ToggleOneShot, nil
	default:
		return kbd.ToggleInvalid, fmt.Errorf("unknown mode %q", s)
	}
}
