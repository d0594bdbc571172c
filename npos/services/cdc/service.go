// Package cdc serves the configuration protocol on the CDC serial channel
// and streams key notifications to the host.
package cdc

import (
	"simplenp/hal"
	"simplenp/npos/kbd"
	"simplenp/npos/logger"
	"simplenp/npos/proto"
)

// UserFns is the function key store the protocol edits.
type UserFns interface {
	Get(kb *kbd.Keyboard, ufn int) (kbd.KeyChar, kbd.ToggleMode, bool)
	Set(kb *kbd.Keyboard, ufn int, code, mod uint8, mode kbd.ToggleMode) bool
	Reset(kb *kbd.Keyboard)
}

// Service decodes requests from the serial channel, answers them and, as a
// keyboard Listener, reports every dispatched key transition.
type Service struct {
	serial hal.Serial
	sys    hal.System
	kb     *kbd.Keyboard
	ufns   UserFns
	log    logger.Logger

	dec   proto.Decoder
	rx    [64]byte
	tx    []byte
	flash bool
}

func New(serial hal.Serial, sys hal.System, kb *kbd.Keyboard, ufns UserFns, log logger.Logger) *Service {
	return &Service{
		serial: serial,
		sys:    sys,
		kb:     kb,
		ufns:   ufns,
		log:    log.With("CDC"),
		tx:     make([]byte, 0, proto.MaxFrame),
	}
}

// Dropped returns the number of frames discarded by the decoder.
func (s *Service) Dropped() int { return s.dec.Dropped }

// StepOnce drains the serial channel and handles every complete frame. A
// pending bootloader request is carried out on the step after its reply.
func (s *Service) StepOnce() {
	if s.serial == nil {
		return
	}
	if s.flash {
		s.flash = false
		if s.sys != nil {
			if err := s.sys.EnterBootloader(); err != nil {
				s.log.Printf("bootloader: %v", err)
			}
		}
	}

	for {
		n, err := s.serial.Read(s.rx[:])
		if err != nil {
			s.log.Printf("read: %v", err)
			return
		}
		if n == 0 {
			return
		}
		for _, b := range s.rx[:n] {
			if f, ok := s.dec.Push(b); ok {
				s.handle(f)
			}
		}
	}
}

func (s *Service) handle(f proto.Frame) {
	switch f.Cmd {
	case proto.CmdNop:
		s.echo(f)
	case proto.CmdGetUFN:
		s.reply(f.Cmd, s.getUFN(f.Data))
	case proto.CmdSetUFN:
		s.reply(f.Cmd, s.setUFN(f.Data))
	case proto.CmdResetUFN:
		if s.ufns != nil {
			s.ufns.Reset(s.kb)
		}
		s.log.Println("function keys reset")
		s.echo(f)
	case proto.CmdFlashMode:
		s.echo(f)
		s.log.Println("entering bootloader")
		s.flash = true
	default:
		s.log.Printf("unknown command %#02x", uint8(f.Cmd))
	}
}

func (s *Service) getUFN(data []byte) proto.UFNReply {
	if len(data) < 1 {
		return proto.UFNFailure(proto.ErrInvalidLength, 0xFF)
	}
	ufn := data[0]
	if s.ufns == nil {
		return proto.UFNFailure(proto.ErrInvalidKey, ufn)
	}
	c, mode, ok := s.ufns.Get(s.kb, int(ufn))
	if !ok {
		return proto.UFNFailure(proto.ErrInvalidUFN, 0xFF)
	}
	return proto.UFNReply{Err: proto.ErrSuccess, UFN: ufn, Code: c.Code, Mod: c.Mod, Toggle: uint8(mode)}
}

func (s *Service) setUFN(data []byte) proto.UFNReply {
	req, err := proto.ParseSetUFN(data)
	if err != nil {
		return proto.UFNFailure(proto.ErrInvalidLength, 0xFF)
	}
	mode := kbd.ToggleMode(req.Toggle)
	switch {
	case int(req.UFN) >= proto.UFNCount:
		return proto.UFNFailure(proto.ErrInvalidUFN, req.UFN)
	case req.Code == kbd.KeyCodeInvalid:
		return proto.UFNFailure(proto.ErrInvalidKey, req.UFN)
	case !mode.Valid():
		return proto.UFNFailure(proto.ErrInvalidToggleMode, req.UFN)
	case s.ufns == nil || !s.ufns.Set(s.kb, int(req.UFN), req.Code, req.Mod, mode):
		return proto.UFNFailure(proto.ErrInvalidKey, req.UFN)
	}
	s.log.Printf("UFN%d = %#02x mod %#02x %s", req.UFN+1, req.Code, req.Mod, mode)
	return s.getUFN(data[:1])
}

func (s *Service) echo(f proto.Frame) {
	s.send(proto.Frame{Cmd: f.Cmd.Reply(), Data: f.Data})
}

func (s *Service) reply(cmd proto.Cmd, r proto.UFNReply) {
	s.send(proto.Frame{Cmd: cmd.Reply(), Data: r.Bytes()})
}

func (s *Service) send(f proto.Frame) {
	buf, err := f.AppendEncode(s.tx[:0])
	if err != nil {
		s.log.Printf("encode %s: %v", f.Cmd, err)
		return
	}
	s.tx = buf
	if _, err := s.serial.Write(buf); err != nil {
		s.log.Printf("write: %v", err)
	}
}

func (s *Service) OnKeyNotify(_ *kbd.Keyboard, key kbd.Key, state kbd.LevelState) {
	if s.serial == nil {
		return
	}
	s.send(proto.NotifyKey(uint8(key), uint8(state)))
}

func (s *Service) OnPostKeyNotify(*kbd.Keyboard) {}
