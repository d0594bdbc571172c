// Package macro records key transitions with their timing and plays them
// back as a scanner.
package macro

import (
	"simplenp/npos/kbd"
)

// Slots is the number of records a macro can hold.
const Slots = 2048

// Record is one stored transition.
type Record struct {
	// Delay is the time since the previous record, in milliseconds.
	Delay uint16
	Key   kbd.Key
	Down  bool
}

// State is what the engine is doing.
type State uint8

const (
	Idle State = iota
	Recording
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Engine is both a Listener (recording) and a Scanner (playback). Install it
// once; it is inert while idle.
type Engine struct {
	now func() uint32

	slots [Slots]Record
	n     int

	state State
	ts    uint32
	done  func()

	bits, prev uint32
}

// New returns an idle engine. now returns a millisecond clock.
func New(now func() uint32) *Engine {
	return &Engine{now: now}
}

func (e *Engine) State() State    { return e.state }
func (e *Engine) Recording() bool { return e.state == Recording }
func (e *Engine) Playing() bool   { return e.state == Playing }

// Len returns the number of stored records.
func (e *Engine) Len() int { return e.n }

// Records returns a copy of the stored macro.
func (e *Engine) Records() []Record {
	return append([]Record(nil), e.slots[:e.n]...)
}

// Record discards the stored macro and starts recording. done runs when
// recording stops, including when the slots fill up.
func (e *Engine) Record(done func()) bool {
	if e.state != Idle {
		return false
	}
	e.n = 0
	e.done = done
	e.state = Recording
	e.ts = e.now()
	return true
}

// StopRecord ends recording.
func (e *Engine) StopRecord() bool {
	if e.state != Recording {
		return false
	}
	e.finish()
	return true
}

// Play starts replaying the stored macro. done runs when playback ends.
func (e *Engine) Play(done func()) bool {
	if e.state != Idle {
		return false
	}
	e.done = done
	e.state = Playing
	e.ts = e.now()
	e.bits, e.prev = 0, 0
	return true
}

// Stop ends playback.
func (e *Engine) Stop() bool {
	if e.state != Playing {
		return false
	}
	e.finish()
	return true
}

func (e *Engine) finish() {
	done := e.done
	e.done = nil
	e.state = Idle
	e.ts = 0
	if done != nil {
		done()
	}
}

// replayable reports whether key is recorded and replayed. The macro keys
// stay with the hardware so playback can always be stopped.
func replayable(key kbd.Key) bool {
	return key.Physical() && key != kbd.KeyMacroRecord && key != kbd.KeyMacroPlay
}

func (e *Engine) OnKeyNotify(_ *kbd.Keyboard, key kbd.Key, state kbd.LevelState) {
	if e.state != Recording || !replayable(key) {
		return
	}
	down := state.IsDown()

	for i := e.n - 1; i >= 0; i-- {
		if e.slots[i].Key != key {
			continue
		}
		if e.slots[i].Down == down {
			return
		}
		break
	}

	now := e.now()
	delay := now - e.ts
	if delay > 0xFFFF {
		delay = 0xFFFF
	}
	e.slots[e.n] = Record{Delay: uint16(delay), Key: key, Down: down}
	e.n++
	e.ts = now

	if e.n >= Slots {
		e.StopRecord()
	}
}

func (e *Engine) OnPostKeyNotify(*kbd.Keyboard) {}

// ScanOnce rebuilds the replayed key bits for the elapsed time. Reaching the
// last record ends playback after this cycle.
func (e *Engine) ScanOnce() bool {
	if e.state != Playing {
		return false
	}
	elapsed := e.now() - e.ts

	var bits, frame uint32
	i := 0
	for ; i < e.n; i++ {
		r := e.slots[i]
		frame += uint32(r.Delay)
		if frame > elapsed {
			break
		}
		if r.Down {
			bits |= 1 << r.Key
		} else {
			bits &^= 1 << r.Key
		}
	}
	e.prev, e.bits = e.bits, bits
	if i >= e.n {
		e.Stop()
	}
	return true
}

func (e *Engine) IsEmpty() bool { return e.bits == e.prev }

func (e *Engine) TakeState(key kbd.Key) (bool, bool) {
	if !replayable(key) {
		return false, false
	}
	return e.bits&(1<<key) != 0, true
}
