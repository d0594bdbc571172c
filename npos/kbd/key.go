package kbd

// Key names one position of the keypad matrix.
type Key uint8

const (
	KeyUFN1 Key = iota
	KeySlash
	KeyAsterisk
	KeyMinus
	KeyNumLock
	KeyUFN2
	KeyNum7
	KeyNum8
	KeyNum9
	KeyPlus
	KeyUFN3
	KeyNum4
	KeyNum5
	KeyNum6
	KeyEnter
	KeyUFN4
	KeyNum1
	KeyNum2
	KeyNum3
	KeyMacroRecord
	KeyUFN5
	KeyNum0
	KeyHidden
	KeyDot
	KeyMacroPlay

	// MaxKeys is the number of key positions, the hidden placeholder included.
	MaxKeys = 25

	KeyInvalid Key = 0xFF
)

var keyNames = [MaxKeys]string{
	"UFN1", "/", "*", "-", "NUMLOCK",
	"UFN2", "7", "8", "9", "+",
	"UFN3", "4", "5", "6", "ENTER",
	"UFN4", "1", "2", "3", "MREC",
	"UFN5", "0", "HIDDEN", ".", "MPLAY",
}

// Valid reports whether k names a key position.
func (k Key) Valid() bool { return k < MaxKeys }

// Physical reports whether k is a real switch (not the placeholder).
func (k Key) Physical() bool { return k.Valid() && k != KeyHidden }

func (k Key) String() string {
	if !k.Valid() {
		return "INVALID"
	}
	return keyNames[k]
}

// LevelState is the debounced four-phase level of a key.
type LevelState uint8

const (
	Low LevelState = iota
	Rising
	High
	Falling
)

// IsDown reports whether the level counts as pressed.
func (s LevelState) IsDown() bool { return s == Rising || s == High }

// Steady reports whether the level is Low or High.
func (s LevelState) Steady() bool { return s == Low || s == High }

func (s LevelState) String() string {
	switch s {
	case Low:
		return "low"
	case Rising:
		return "rising"
	case High:
		return "high"
	case Falling:
		return "falling"
	default:
		return "unknown"
	}
}

// ToggleMode selects how a latching key reports to the host.
type ToggleMode uint8

const (
	ToggleNone ToggleMode = iota
	ToggleToggle
	ToggleOneShot

	ToggleModeMax

	ToggleInvalid ToggleMode = 0xFF
)

// Valid reports whether m is a known toggle mode.
func (m ToggleMode) Valid() bool { return m < ToggleModeMax }

func (m ToggleMode) String() string {
	switch m {
	case ToggleNone:
		return "none"
	case ToggleToggle:
		return "toggle"
	case ToggleOneShot:
		return "oneshot"
	default:
		return "invalid"
	}
}

// KeyChar is what a key emits: a character for the default and alternate
// layers plus a HID usage code and modifier mask.
type KeyChar struct {
	Default byte
	Alt     byte
	Code    uint8
	Mod     uint8
}
