package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// LEDBank is a row of indicator LEDs driven as one bit mask.
//
// Bits are physical levels; polarity is the caller's concern.
type LEDBank interface {
	Count() int
	WriteMask(mask uint8) error
}

// HIDReportKeys is the number of key slots in a boot keyboard report.
const HIDReportKeys = 6

// HID is the USB keyboard interface towards the host.
type HID interface {
	// SendReport replaces the host-visible key state.
	SendReport(mod uint8, keys [HIDReportKeys]uint8) error
	// HostLEDs returns the last keyboard LED output report from the host.
	HostLEDs() uint8
}

// Host keyboard LED output report bits.
const (
	HostLEDNumLock uint8 = 1 << iota
	HostLEDCapsLock
	HostLEDScrollLock
)

// Serial is the CDC data channel. Read never blocks: it returns 0, nil when
// nothing is buffered.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Time provides a base tick stream.
//
// The tick duration is one millisecond on every platform.
type Time interface {
	Ticks() <-chan uint64
}

// System exposes board-level controls.
type System interface {
	// EnterBootloader reboots into the mass-storage flashing mode.
	EnterBootloader() error
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	GPIO() GPIO
	Display() Display
	LEDBank() LEDBank
	HID() HID
	Serial() Serial
	Time() Time
	System() System
}
