// Package hid turns the keyboard state into USB boot keyboard reports.
package hid

import (
	"simplenp/hal"
	"simplenp/npos/kbd"
	"simplenp/npos/logger"
)

// Report is a boot keyboard input report.
type Report struct {
	Mod  uint8
	Keys [hal.HIDReportKeys]uint8
}

func (r *Report) add(c kbd.KeyChar) bool {
	r.Mod |= c.Mod
	code := c.Code
	switch {
	case code == kbd.KeyCodeNone || code == kbd.KeyCodeInvalid:
		return c.Mod != 0
	case kbd.IsModifierCode(code):
		r.Mod |= kbd.ModifierBit(code)
		return true
	}
	for i, k := range r.Keys {
		if k == code {
			return true
		}
		if k == 0 {
			r.Keys[i] = code
			return true
		}
	}
	return false
}

// Empty reports whether nothing is pressed.
func (r Report) Empty() bool { return r == Report{} }

// Disarmer clears a one-shot key once it has been sent.
type Disarmer interface {
	Disarm(kb *kbd.Keyboard, key kbd.Key)
}

// Notifier is a keyboard Listener that sends a report after every cycle
// that changed a key, if the report differs from the last one sent.
//
// Install it with Listen to attach the host; Unlisten detaches it and
// releases everything on the host side.
type Notifier struct {
	hid      hal.HID
	log      logger.Logger
	oneShots Disarmer

	last   Report
	leds   uint8
	onLEDs func(kb *kbd.Keyboard, leds uint8)
	active bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithOneShots routes one-shot disarming through d.
func WithOneShots(d Disarmer) Option {
	return func(n *Notifier) { n.oneShots = d }
}

// WithHostLEDs calls fn when the host changes its keyboard LEDs.
func WithHostLEDs(fn func(kb *kbd.Keyboard, leds uint8)) Option {
	return func(n *Notifier) { n.onLEDs = fn }
}

func New(dev hal.HID, log logger.Logger, opts ...Option) *Notifier {
	n := &Notifier{hid: dev, log: log.With("HID")}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Active reports whether the notifier is attached to a keyboard.
func (n *Notifier) Active() bool { return n.active }

// Last returns the last report sent.
func (n *Notifier) Last() Report { return n.last }

// Build composes the report for the current keyboard state: held keys in
// recency order, latched toggle keys, and armed one-shot keys when anything
// else is reported. The armed keys are returned so the caller can disarm
// them once the report is out.
func Build(kb *kbd.Keyboard) (Report, []kbd.Key) {
	var (
		r     Report
		other bool
		armed []kbd.Key
	)
	for _, key := range kb.PressingKeys(kbd.MaxKeys) {
		rec, _ := kb.Record(key)
		if rec.ToggleMode != kbd.ToggleNone {
			continue
		}
		if r.add(rec.Char) {
			other = true
		}
	}
	for _, key := range kbd.UserFnKeys {
		rec, _ := kb.Record(key)
		if rec.Toggle == 0 {
			continue
		}
		switch rec.ToggleMode {
		case kbd.ToggleToggle:
			if r.add(rec.Char) {
				other = true
			}
		case kbd.ToggleOneShot:
			armed = append(armed, key)
		}
	}
	if !other {
		return r, nil
	}
	for _, key := range armed {
		rec, _ := kb.Record(key)
		r.add(rec.Char)
	}
	return r, armed
}

func (n *Notifier) OnKeyNotify(*kbd.Keyboard, kbd.Key, kbd.LevelState) {}

func (n *Notifier) OnPostKeyNotify(kb *kbd.Keyboard) {
	r, armed := Build(kb)
	if !n.send(r) {
		return
	}
	for _, key := range armed {
		if n.oneShots != nil {
			n.oneShots.Disarm(kb, key)
			continue
		}
		kb.Edit(key, func(rec *kbd.KeyRecord) { rec.Toggle = 0 })
	}
}

func (n *Notifier) send(r Report) bool {
	if r == n.last {
		return false
	}
	if n.hid != nil {
		if err := n.hid.SendReport(r.Mod, r.Keys); err != nil {
			n.log.Printf("send: %v", err)
			return false
		}
	}
	n.last = r
	return true
}

func (n *Notifier) OnListen(kb *kbd.Keyboard) {
	n.active = true
	// Host LED values never reach 0xFF, so the first poll always syncs.
	n.leds = 0xFF
	n.log.Println("attached")
}

func (n *Notifier) OnUnlisten(*kbd.Keyboard) {
	n.active = false
	n.send(Report{})
	n.log.Println("detached")
}

func (n *Notifier) OnEnabled(*kbd.Keyboard) {}

func (n *Notifier) OnDisabled(*kbd.Keyboard) { n.send(Report{}) }

// StepOnce polls the host keyboard LEDs and reports changes.
func (n *Notifier) StepOnce(kb *kbd.Keyboard) {
	if n.hid == nil || !n.active {
		return
	}
	leds := n.hid.HostLEDs()
	if leds == n.leds {
		return
	}
	n.leds = leds
	if n.onLEDs != nil {
		n.onLEDs(kb, leds)
	}
}
