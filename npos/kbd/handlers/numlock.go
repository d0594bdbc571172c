package handlers

import (
	"simplenp/hal"
	"simplenp/npos/board"
	"simplenp/npos/kbd"
	"simplenp/npos/logger"
)

// NumLock owns the numlock key and the numeric keys.
//
// The numlock toggle selects the Alt layer of the numeric keys. It flips when
// the numlock key is released, unless the host reported its own NumLock LED
// while the key was down: the host state wins then.
type NumLock struct {
	leds LEDs
	log  logger.Logger

	hostSynced bool
}

// NewNumLock returns the numlock handler. It is both a Handler and a
// Listener and must be installed as both.
func NewNumLock(leds LEDs, log logger.Logger) *NumLock {
	return &NumLock{leds: orNop(leds), log: log.With("NUMLOCK")}
}

func isNumeric(key kbd.Key) bool {
	for _, k := range kbd.NumericKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (n *NumLock) OnKeyUpdated(kb *kbd.Keyboard, key kbd.Key, state kbd.LevelState) bool {
	if key != kbd.KeyNumLock {
		return isNumeric(key)
	}

	switch state {
	case kbd.Rising:
		n.hostSynced = false
	case kbd.Falling:
		if !n.hostSynced {
			kb.Edit(key, func(rec *kbd.KeyRecord) { rec.Toggle = flip(rec.Toggle) })
		}
	}
	return true
}

func (n *NumLock) OnKeyNotify(kb *kbd.Keyboard, key kbd.Key, state kbd.LevelState) {
	if key != kbd.KeyNumLock {
		return
	}
	on := n.Active(kb)
	n.leds.Set(board.LEDNumLock, on)

	if state == kbd.Falling {
		if on {
			n.log.Println("ON")
		} else {
			n.log.Println("OFF")
		}
	}
}

func (n *NumLock) OnPostKeyNotify(*kbd.Keyboard) {}

func (n *NumLock) OnEnabled(kb *kbd.Keyboard) {
	n.leds.Set(board.LEDNumLock, n.Active(kb))
}

func (n *NumLock) OnDisabled(*kbd.Keyboard) {}

// Active reports whether the Alt layer is selected.
func (n *NumLock) Active(kb *kbd.Keyboard) bool {
	t, _ := kb.Toggle(kbd.KeyNumLock)
	return t != 0
}

// Char returns the character key types under the current layer, or 0.
func (n *NumLock) Char(kb *kbd.Keyboard, key kbd.Key) byte {
	c, ok := kb.Char(key)
	if !ok {
		return 0
	}
	if n.Active(kb) && c.Alt != 0 {
		return c.Alt
	}
	return c.Default
}

// Typed returns the character of the most recently released key, or 0.
func (n *NumLock) Typed(kb *kbd.Keyboard) byte {
	key := kb.RecentKey(kbd.Falling)
	if key == kbd.KeyInvalid {
		return 0
	}
	return n.Char(kb, key)
}

// SyncHost applies the host's keyboard LED report. Host NumLock on means the
// plain numeric layer.
func (n *NumLock) SyncHost(kb *kbd.Keyboard, hostLEDs uint8) {
	var t uint8
	if hostLEDs&hal.HostLEDNumLock == 0 {
		t = 0xFF
	}
	kb.Edit(kbd.KeyNumLock, func(rec *kbd.KeyRecord) { rec.Toggle = t })
	if kb.IsKeyDown(kbd.KeyNumLock) {
		n.hostSynced = true
	}

	state, _ := kb.Level(kbd.KeyNumLock)
	n.OnKeyNotify(kb, kbd.KeyNumLock, state)
}
