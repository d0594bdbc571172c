// Package handlers holds the keypad's built-in key handlers: the numlock
// layer, the user function keys and the macro keys.
package handlers

// LEDs is the indicator surface the handlers drive.
type LEDs interface {
	Set(led int, on bool)
}

type nopLEDs struct{}

func (nopLEDs) Set(int, bool) {}

func orNop(l LEDs) LEDs {
	if l == nil {
		return nopLEDs{}
	}
	return l
}

// flip toggles a latch byte between clear (0) and set (0xFF).
func flip(t uint8) uint8 {
	if t != 0 {
		return 0
	}
	return 0xFF
}
