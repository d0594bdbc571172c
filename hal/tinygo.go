//go:build tinygo && baremetal

package hal

import (
	"machine"
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

type tinyGoHAL struct {
	logger *uartLogger
	gpio   GPIO
	fb     Framebuffer
	leds   LEDBank
	hid    HID
	t      *tinyGoTime
	serial Serial
	sys    System
}

// New returns the RP2040 keypad HAL.
//
// UART: UART0 on GP16 (TX), 115200 8N1, log only.
// Matrix: rows GP0-GP4 driven high, columns GP9..GP5 with pull-downs.
// TFT: ST7735S 160x80 on SPI0. LEDs: 74HC595 on GP10 (SER), GP11 (CLK), GP12 (LAT).
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP16,
	})

	pins := make(pinBank, 0, MatrixRows+MatrixCols)
	for i, p := range []machine.Pin{machine.GP0, machine.GP1, machine.GP2, machine.GP3, machine.GP4} {
		pins = append(pins, newMachinePin(rowName(i), p))
	}
	for i, p := range []machine.Pin{machine.GP9, machine.GP8, machine.GP7, machine.GP6, machine.GP5} {
		pins = append(pins, newMachinePin(colName(i), p))
	}

	logger := &uartLogger{uart: uart}
	var fb Framebuffer
	if d, err := newST7735Framebuffer(); err == nil {
		fb = d
	} else {
		logger.WriteLineString("hal: display: " + err.Error())
		fb = newOfflineFramebuffer(err)
	}

	return &tinyGoHAL{
		logger: logger,
		gpio:   pins,
		fb:     fb,
		leds:   newShiftLEDBank(machine.GP10, machine.GP11, machine.GP12),
		hid:    newUSBKeyboard(),
		t:      newTinyGoTime(),
		serial: &usbSerial{},
		sys:    rp2040System{},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) LEDBank() LEDBank { return h.leds }
func (h *tinyGoHAL) HID() HID         { return h.hid }
func (h *tinyGoHAL) Serial() Serial   { return h.serial }
func (h *tinyGoHAL) Time() Time       { return h.t }
func (h *tinyGoHAL) System() System   { return h.sys }

func rowName(i int) string { return "ROW" + string(rune('1'+i)) }
func colName(i int) string { return "COL" + string(rune('1'+i)) }

type rp2040System struct{}

func (rp2040System) EnterBootloader() error {
	machine.EnterBootloader()
	return nil
}
