package handlers

import (
	"simplenp/npos/board"
	"simplenp/npos/kbd"
)

// UserFn owns the five user function keys.
//
// How a key reports to the host depends on its toggle mode:
//
//	ToggleNone     reported while held, LED follows the key
//	ToggleToggle   each press flips a latch, reported while latched
//	ToggleOneShot  a press arms the key for the next report
//
// The latch and the armed flag live in the key record's Toggle byte.
type UserFn struct {
	leds LEDs
}

func NewUserFn(leds LEDs) *UserFn {
	return &UserFn{leds: orNop(leds)}
}

func ledOf(ufn int) int { return board.LEDUFN1 + ufn }

func (u *UserFn) OnKeyUpdated(kb *kbd.Keyboard, key kbd.Key, state kbd.LevelState) bool {
	ufn := kbd.UserFnIndex(key)
	if ufn < 0 {
		return false
	}

	rec, _ := kb.Record(key)
	switch rec.ToggleMode {
	case kbd.ToggleToggle, kbd.ToggleOneShot:
		if state != kbd.Rising {
			break
		}
		var t uint8
		kb.Edit(key, func(rec *kbd.KeyRecord) {
			if rec.ToggleMode == kbd.ToggleOneShot {
				rec.Toggle = 0xFF
			} else {
				rec.Toggle = flip(rec.Toggle)
			}
			t = rec.Toggle
		})
		u.leds.Set(ledOf(ufn), t != 0)

	default:
		switch state {
		case kbd.Rising:
			u.leds.Set(ledOf(ufn), true)
		case kbd.Falling:
			u.leds.Set(ledOf(ufn), false)
		}
	}
	return true
}

func (u *UserFn) OnEnabled(kb *kbd.Keyboard) { u.syncLEDs(kb) }

// OnDisabled drops the LEDs of momentary keys; latched keys keep theirs.
func (u *UserFn) OnDisabled(kb *kbd.Keyboard) {
	for i, key := range kbd.UserFnKeys {
		rec, _ := kb.Record(key)
		if rec.ToggleMode == kbd.ToggleNone {
			u.leds.Set(ledOf(i), false)
		}
	}
}

func (u *UserFn) syncLEDs(kb *kbd.Keyboard) {
	for i, key := range kbd.UserFnKeys {
		rec, _ := kb.Record(key)
		if rec.ToggleMode == kbd.ToggleNone {
			u.leds.Set(ledOf(i), rec.Level().IsDown())
		} else {
			u.leds.Set(ledOf(i), rec.Toggle != 0)
		}
	}
}

// Disarm clears a one-shot key after it has been reported.
func (u *UserFn) Disarm(kb *kbd.Keyboard, key kbd.Key) {
	ufn := kbd.UserFnIndex(key)
	if ufn < 0 {
		return
	}
	kb.Edit(key, func(rec *kbd.KeyRecord) { rec.Toggle = 0 })
	u.leds.Set(ledOf(ufn), false)
}

// Get returns the mapping and toggle mode of function key ufn.
func (u *UserFn) Get(kb *kbd.Keyboard, ufn int) (kbd.KeyChar, kbd.ToggleMode, bool) {
	key, ok := kbd.UserFnKey(ufn)
	if !ok {
		return kbd.KeyChar{}, kbd.ToggleInvalid, false
	}
	rec, _ := kb.Record(key)
	return rec.Char, rec.ToggleMode, true
}

// Set programs function key ufn. Any latch is cleared.
func (u *UserFn) Set(kb *kbd.Keyboard, ufn int, code, mod uint8, mode kbd.ToggleMode) bool {
	key, ok := kbd.UserFnKey(ufn)
	if !ok || !mode.Valid() {
		return false
	}
	kb.Edit(key, func(rec *kbd.KeyRecord) {
		rec.Char.Code = code
		rec.Char.Mod = mod
		rec.ToggleMode = mode
		rec.Toggle = 0
	})
	u.leds.Set(ledOf(ufn), mode == kbd.ToggleNone && kb.IsKeyDown(key))
	return true
}

// Reset clears every function key: no code, no modifiers, no toggling.
func (u *UserFn) Reset(kb *kbd.Keyboard) {
	for i := range kbd.UserFnKeys {
		u.Set(kb, i, kbd.KeyCodeNone, 0, kbd.ToggleNone)
	}
}
