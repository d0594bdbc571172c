//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

// Matrix geometry of the keypad.
const (
	MatrixRows = 5
	MatrixCols = 5
)

// Display geometry of the keypad's TFT.
const (
	DisplayWidth  = 160
	DisplayHeight = 80
)

// HostConfig selects the host simulator's optional endpoints.
type HostConfig struct {
	// CDCAddr is the TCP address the CDC channel listens on; empty disables it.
	CDCAddr string
}

type hostHAL struct {
	logger *hostLogger
	matrix *KeyMatrix
	gpio   GPIO
	fb     *hostFramebuffer
	leds   *hostLEDBank
	hid    *hostHID
	kbd    *hostKeyboard
	t      *hostClock
	serial Serial
	sys    *hostSystem
}

// New returns a host HAL implementation without a CDC endpoint.
func New() HAL {
	h, err := newHost(HostConfig{})
	if err != nil {
		panic(err)
	}
	return h
}

func newHost(cfg HostConfig) (*hostHAL, error) {
	logger := &hostLogger{w: os.Stdout}
	matrix := NewKeyMatrix(MatrixRows, MatrixCols)

	var serial Serial = nullSerial{}
	if cfg.CDCAddr != "" {
		s, err := listenSerial(cfg.CDCAddr, logger)
		if err != nil {
			return nil, fmt.Errorf("hal: cdc listen %s: %w", cfg.CDCAddr, err)
		}
		serial = s
	}

	hid := &hostHID{logger: logger}
	return &hostHAL{
		logger: logger,
		matrix: matrix,
		gpio:   matrix.GPIO(),
		fb:     newHostFramebuffer(DisplayWidth, DisplayHeight),
		leds:   &hostLEDBank{count: 8, mask: 0xFF},
		hid:    hid,
		kbd:    newHostKeyboard(matrix, hid),
		t:      newHostClock(),
		serial: serial,
		sys:    &hostSystem{logger: logger},
	}, nil
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) GPIO() GPIO       { return h.gpio }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) LEDBank() LEDBank { return h.leds }
func (h *hostHAL) HID() HID         { return h.hid }
func (h *hostHAL) Serial() Serial   { return h.serial }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) System() System   { return h.sys }

func (h *hostHAL) close() {
	if c, ok := h.serial.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLEDBank struct {
	mu    sync.Mutex
	count int
	mask  uint8
}

func (b *hostLEDBank) Count() int { return b.count }

func (b *hostLEDBank) WriteMask(mask uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mask = mask
	return nil
}

func (b *hostLEDBank) snapshot() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mask
}

type hostHID struct {
	mu     sync.Mutex
	logger *hostLogger
	mod    uint8
	keys   [HIDReportKeys]uint8
	leds   uint8
	sent   int
}

func (h *hostHID) SendReport(mod uint8, keys [HIDReportKeys]uint8) error {
	h.mu.Lock()
	h.mod, h.keys = mod, keys
	h.sent++
	h.mu.Unlock()
	h.logger.WriteLineString(fmt.Sprintf("hid: mod=%02x keys=% x", mod, keys[:]))
	return nil
}

func (h *hostHID) HostLEDs() uint8 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.leds
}

func (h *hostHID) toggleHostLED(bit uint8) {
	h.mu.Lock()
	h.leds ^= bit
	leds := h.leds
	h.mu.Unlock()
	h.logger.WriteLineString(fmt.Sprintf("hid: host leds=%03b", leds))
}

type hostSystem struct {
	logger *hostLogger
}

func (s *hostSystem) EnterBootloader() error {
	s.logger.WriteLineString("system: bootloader requested (ignored on host)")
	return nil
}
