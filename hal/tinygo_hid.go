//go:build tinygo && baremetal

package hal

import (
	"machine/usb/hid/keyboard"
)

// Keycode encodings understood by the TinyGo keyboard port.
const (
	usageFlag    = 0xF000
	modifierFlag = 0xE000
)

type keyboardPort interface {
	Down(c keyboard.Keycode) error
	Up(c keyboard.Keycode) error
	NumLock() bool
	CapsLock() bool
	ScrollLock() bool
}

// usbKeyboard turns whole reports into the port's Down/Up edges.
type usbKeyboard struct {
	port keyboardPort
	mod  uint8
	keys [HIDReportKeys]uint8
}

func newUSBKeyboard() *usbKeyboard {
	return &usbKeyboard{port: keyboard.Port()}
}

func (k *usbKeyboard) SendReport(mod uint8, keys [HIDReportKeys]uint8) error {
	for _, c := range k.keys {
		if c != 0 && !containsCode(keys, c) {
			if err := k.port.Up(keyboard.Keycode(usageFlag | uint16(c))); err != nil {
				return err
			}
		}
	}
	for bit := uint8(1); bit != 0; bit <<= 1 {
		was, now := k.mod&bit != 0, mod&bit != 0
		switch {
		case was && !now:
			if err := k.port.Up(keyboard.Keycode(modifierFlag | uint16(bit))); err != nil {
				return err
			}
		case !was && now:
			if err := k.port.Down(keyboard.Keycode(modifierFlag | uint16(bit))); err != nil {
				return err
			}
		}
	}
	for _, c := range keys {
		if c != 0 && !containsCode(k.keys, c) {
			if err := k.port.Down(keyboard.Keycode(usageFlag | uint16(c))); err != nil {
				return err
			}
		}
	}
	k.mod, k.keys = mod, keys
	return nil
}

func (k *usbKeyboard) HostLEDs() uint8 {
	var leds uint8
	if k.port.NumLock() {
		leds |= HostLEDNumLock
	}
	if k.port.CapsLock() {
		leds |= HostLEDCapsLock
	}
	if k.port.ScrollLock() {
		leds |= HostLEDScrollLock
	}
	return leds
}

func containsCode(keys [HIDReportKeys]uint8, c uint8) bool {
	for _, k := range keys {
		if k == c {
			return true
		}
	}
	return false
}
