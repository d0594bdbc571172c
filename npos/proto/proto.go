// Package proto is the framing and message set of the keypad's CDC
// configuration channel. It is shared by the firmware and the host tool.
//
// Frame layout:
//   - u8: STX (0x02)
//   - u8: command
//   - u8: data length (0..16)
//   - bytes: data
//   - u8: ETX (0x03)
//   - u8: checksum, low byte of the sum of every preceding byte
package proto

import "errors"

const (
	STX = 0x02
	ETX = 0x03

	// MaxData is the largest data field a frame may carry.
	MaxData = 16
	// MaxFrame is the encoded size of a frame with MaxData bytes.
	MaxFrame = MaxData + 5
)

// Cmd is a frame's command byte.
type Cmd uint8

const (
	CmdNop       Cmd = 0x00
	CmdGetUFN    Cmd = 0x01
	CmdSetUFN    Cmd = 0x02
	CmdResetUFN  Cmd = 0x03
	CmdFlashMode Cmd = 0x7F

	// CmdNotifyKey is sent unsolicited for every dispatched key transition.
	CmdNotifyKey Cmd = 0xFE

	// ReplyFlag is set on the command byte of a reply.
	ReplyFlag Cmd = 0x80
)

// Reply returns the reply command for c.
func (c Cmd) Reply() Cmd { return c | ReplyFlag }

// IsReply reports whether c is a reply (notifications excluded).
func (c Cmd) IsReply() bool { return c != CmdNotifyKey && c&ReplyFlag != 0 }

// Request returns c with the reply flag cleared.
func (c Cmd) Request() Cmd {
	if c == CmdNotifyKey {
		return c
	}
	return c &^ ReplyFlag
}

func (c Cmd) String() string {
	suffix := ""
	if c.IsReply() {
		suffix = "_reply"
	}
	switch c.Request() {
	case CmdNop:
		return "nop" + suffix
	case CmdGetUFN:
		return "get_ufn" + suffix
	case CmdSetUFN:
		return "set_ufn" + suffix
	case CmdResetUFN:
		return "reset_ufn" + suffix
	case CmdFlashMode:
		return "flash_mode" + suffix
	case CmdNotifyKey:
		return "notify_key"
	default:
		return "unknown" + suffix
	}
}

// ErrCode is the first byte of a UFN reply.
type ErrCode uint8

const (
	ErrSuccess ErrCode = iota
	ErrInvalidLength
	ErrInvalidUFN
	ErrInvalidKey
	ErrInvalidToggleMode
)

func (e ErrCode) String() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrInvalidLength:
		return "invalid_length"
	case ErrInvalidUFN:
		return "invalid_ufn"
	case ErrInvalidKey:
		return "invalid_key"
	case ErrInvalidToggleMode:
		return "invalid_toggle_mode"
	default:
		return "unknown"
	}
}

// Error makes a non-success code usable as an error on the host side.
func (e ErrCode) Error() string { return "device: " + e.String() }

var (
	ErrDataTooLong = errors.New("proto: data longer than 16 bytes")
	ErrShortData   = errors.New("proto: data too short")
	ErrUnexpected  = errors.New("proto: unexpected command")
)

// Frame is one decoded or to-be-encoded message.
type Frame struct {
	Cmd  Cmd
	Data []byte
}

// Checksum returns the frame's checksum byte.
func (f Frame) Checksum() byte {
	sum := uint16(STX) + uint16(f.Cmd) + uint16(len(f.Data)) + uint16(ETX)
	for _, b := range f.Data {
		sum += uint16(b)
	}
	return byte(sum)
}

// AppendEncode appends the encoded frame to dst.
func (f Frame) AppendEncode(dst []byte) ([]byte, error) {
	if len(f.Data) > MaxData {
		return dst, ErrDataTooLong
	}
	dst = append(dst, STX, byte(f.Cmd), byte(len(f.Data)))
	dst = append(dst, f.Data...)
	return append(dst, ETX, f.Checksum()), nil
}

// Encode returns the encoded frame.
func (f Frame) Encode() ([]byte, error) {
	return f.AppendEncode(make([]byte, 0, len(f.Data)+5))
}
