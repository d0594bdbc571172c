package handlers

import (
	"simplenp/npos/board"
	"simplenp/npos/kbd"
	"simplenp/npos/logger"
)

// Macro is the record/playback engine the macro keys drive.
type Macro interface {
	Recording() bool
	Playing() bool
	Record(done func()) bool
	StopRecord() bool
	Play(done func()) bool
	Stop() bool
}

// MacroKeys starts and stops recording and playback from the MREC and
// MPLAY keys. The key LEDs stay lit while the engine runs.
type MacroKeys struct {
	m    Macro
	leds LEDs
	log  logger.Logger
}

func NewMacroKeys(m Macro, leds LEDs, log logger.Logger) *MacroKeys {
	return &MacroKeys{m: m, leds: orNop(leds), log: log.With("MACRO")}
}

func (h *MacroKeys) OnKeyUpdated(kb *kbd.Keyboard, key kbd.Key, state kbd.LevelState) bool {
	switch key {
	case kbd.KeyMacroRecord:
		if state == kbd.Rising {
			h.record()
		}
		return true
	case kbd.KeyMacroPlay:
		if state == kbd.Rising {
			h.play()
		}
		return true
	}
	return false
}

func (h *MacroKeys) record() {
	if h.m.Recording() {
		h.m.StopRecord()
		return
	}
	if !h.m.Record(func() {
		h.leds.Set(board.LEDMacroRecord, false)
		h.log.Println("recorded")
	}) {
		return
	}
	h.leds.Set(board.LEDMacroRecord, true)
	h.log.Println("recording")
}

func (h *MacroKeys) play() {
	if h.m.Playing() {
		h.m.Stop()
		return
	}
	if !h.m.Play(func() {
		h.leds.Set(board.LEDMacroPlay, false)
	}) {
		return
	}
	h.leds.Set(board.LEDMacroPlay, true)
	h.log.Println("playing")
}
