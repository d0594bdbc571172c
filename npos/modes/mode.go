// Package modes switches the keypad between its UI modes.
package modes

import "simplenp/npos/logger"

// Mode is one UI mode. Enter may refuse, in which case the previous mode
// stays current.
type Mode interface {
	Name() string
	Enter() bool
	Leave()
	StepOnce()
}

// Switcher holds the current mode.
type Switcher struct {
	def Mode
	cur Mode
	log logger.Logger
}

// NewSwitcher returns a switcher with no current mode. def is used when Set
// is given nil.
func NewSwitcher(def Mode, log logger.Logger) *Switcher {
	return &Switcher{def: def, log: log.With("MODE")}
}

// Current returns the current mode, entering the default one if there is
// none yet.
func (s *Switcher) Current() Mode {
	if s.cur == nil {
		s.Set(nil)
	}
	return s.cur
}

// Set makes m current. The new mode is entered before the old one is left,
// so the keyboard is never left without an owner. Setting the current mode
// again does nothing.
func (s *Switcher) Set(m Mode) bool {
	if m == nil {
		m = s.def
	}
	if m == nil || m == s.cur {
		return false
	}
	if !m.Enter() {
		s.log.Printf("%s refused", m.Name())
		return false
	}
	prev := s.cur
	if prev != nil {
		prev.Leave()
	}
	s.cur = m
	s.log.Println(m.Name())
	return true
}

// StepOnce steps the current mode.
func (s *Switcher) StepOnce() {
	if m := s.Current(); m != nil {
		m.StepOnce()
	}
}
