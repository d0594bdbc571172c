//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers/shiftregister"
)

type shiftLEDBank struct {
	dev *shiftregister.Device
}

func newShiftLEDBank(ser, clk, lat machine.Pin) *shiftLEDBank {
	dev := shiftregister.New(shiftregister.EIGHT_BITS, lat, clk, ser)
	dev.Configure()
	// All off: the bank is active-low.
	dev.WriteMask(0xFF)
	return &shiftLEDBank{dev: dev}
}

func (b *shiftLEDBank) Count() int { return 8 }

func (b *shiftLEDBank) WriteMask(mask uint8) error {
	b.dev.WriteMask(uint32(mask))
	return nil
}
