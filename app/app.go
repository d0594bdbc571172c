package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"simplenp/hal"
	"simplenp/npos/kbd"
	"simplenp/npos/kbd/handlers"
	"simplenp/npos/kbd/scanners"
	"simplenp/npos/kernel"
	"simplenp/npos/logger"
	"simplenp/npos/modes"
	"simplenp/npos/services/cdc"
	"simplenp/npos/services/console"
	"simplenp/npos/services/hid"
	"simplenp/npos/services/ledctl"
	"simplenp/npos/services/macro"
)

type Config struct {
	// Welcome plays the greeting before entering the numpad.
	Welcome bool
	// Frames replaces the default greeting.
	Frames []modes.Frame
	// Worker presents the console from a goroutine instead of at the end
	// of each step.
	Worker bool
	// Settle replaces the matrix row settling delay.
	Settle func(time.Duration)
}

type system struct {
	h     hal.HAL
	log   logger.Logger
	ticks <-chan uint64
	ms    atomic.Uint32

	q      *kernel.Queue
	worker *kernel.Worker

	kb      *kbd.Keyboard
	matrix  *scanners.Matrix
	macros  *macro.Engine
	numlock *handlers.NumLock
	userfn  *handlers.UserFn
	leds    *ledctl.Controller
	host    *hid.Notifier
	cdc     *cdc.Service
	con     *console.Console
	modes   *modes.Switcher

	halted error
}

// New initializes the firmware with default config and returns its step
// function.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run starts the firmware and steps it forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, Config{Worker: true})
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	return newSystem(h, cfg).step
}

func RunWithConfig(h hal.HAL, cfg Config) {
	step := NewWithConfig(h, cfg)
	for {
		if err := step(); err != nil {
			select {}
		}
		time.Sleep(time.Millisecond)
	}
}

func newSystem(h hal.HAL, cfg Config) *system {
	s := &system{h: h, log: logger.New(h.Logger()), q: kernel.NewQueue()}
	if ht := h.Time(); ht != nil {
		s.ticks = ht.Ticks()
	}
	if cfg.Worker {
		s.worker = kernel.Start(context.Background(), s.q)
	}

	bootStep(h, "console")
	s.con = console.New(h.Display(), s.q)
	s.log.Tee(s.con)
	s.log.Println("SimpleNP")

	bootStep(h, "keyboard")
	s.kb = kbd.New(nil)
	s.leds = ledctl.New(h.LEDBank())

	var opts []scanners.MatrixOption
	if cfg.Settle != nil {
		opts = append(opts, scanners.WithSettle(cfg.Settle))
	}
	m, err := scanners.NewMatrix(h.GPIO(), opts...)
	if err != nil {
		s.log.Printf("matrix: %v", err)
	} else {
		s.matrix = m
		s.kb.PushScanner(m)
	}

	// Pushed last so playback owns the keys it replays.
	s.macros = macro.New(s.now)
	s.kb.PushScanner(s.macros)
	s.kb.Listen(s.macros)

	s.userfn = handlers.NewUserFn(s.leds)
	s.numlock = handlers.NewNumLock(s.leds, s.log)
	s.kb.PushHandler(s.userfn)
	s.kb.PushHandler(handlers.NewMacroKeys(s.macros, s.leds, s.log))
	s.kb.PushHandler(s.numlock)
	s.kb.Listen(s.numlock)

	bootStep(h, "usb")
	s.cdc = cdc.New(h.Serial(), h.System(), s.kb, s.userfn, s.log)
	s.kb.Listen(s.cdc)

	s.host = hid.New(h.HID(), s.log,
		hid.WithOneShots(s.userfn),
		hid.WithHostLEDs(s.numlock.SyncHost),
	)

	bootStep(h, "modes")
	numpad := modes.NewNumpad(s.kb, s.host, s.con, s.numlock)
	s.modes = modes.NewSwitcher(numpad, s.log)
	if cfg.Welcome {
		s.modes.Set(modes.NewWelcome(s.modes, numpad, s.kb, s.host, s.con, s.now, cfg.Frames))
	} else {
		s.modes.Set(numpad)
	}
	return s
}

// now is the millisecond clock fed by the HAL tick stream.
func (s *system) now() uint32 { return s.ms.Load() }

func (s *system) pumpTicks() {
	for {
		select {
		case seq, ok := <-s.ticks:
			if !ok {
				s.ticks = nil
				return
			}
			s.ms.Store(uint32(seq))
		default:
			return
		}
	}
}

// step runs one main-loop iteration. A panic halts the firmware: it is shown
// on the display and every later step returns the same error.
func (s *system) step() (err error) {
	if s.halted != nil {
		return s.halted
	}
	defer func() {
		if v := recover(); v != nil {
			s.halted = fmt.Errorf("app: panic: %v", v)
			showPanic(s.h, s.log, v, debug.Stack())
			err = s.halted
		}
	}()

	s.pumpTicks()
	s.kb.ScanOnce()
	s.leds.UpdateOnce()
	s.cdc.StepOnce()
	s.modes.StepOnce()
	if s.worker == nil {
		s.q.Drain()
	}
	return nil
}
