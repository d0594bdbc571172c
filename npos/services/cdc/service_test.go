package cdc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplenp/npos/kbd"
	"simplenp/npos/kbd/handlers"
	"simplenp/npos/logger"
	"simplenp/npos/proto"
)

type pipe struct {
	in  bytes.Buffer
	out bytes.Buffer
}

func (p *pipe) Read(b []byte) (int, error) {
	if p.in.Len() == 0 {
		return 0, nil
	}
	return p.in.Read(b)
}

func (p *pipe) Write(b []byte) (int, error) { return p.out.Write(b) }

func (p *pipe) send(t *testing.T, f proto.Frame) {
	t.Helper()
	b, err := f.Encode()
	require.NoError(t, err)
	p.in.Write(b)
}

func (p *pipe) frames() []proto.Frame {
	var (
		d   proto.Decoder
		out []proto.Frame
	)
	for _, b := range p.out.Bytes() {
		if f, ok := d.Push(b); ok {
			out = append(out, proto.Frame{Cmd: f.Cmd, Data: append([]byte(nil), f.Data...)})
		}
	}
	p.out.Reset()
	return out
}

type bootSpy struct {
	calls int
	err   error
}

func (b *bootSpy) EnterBootloader() error {
	b.calls++
	return b.err
}

func setup() (*Service, *pipe, *bootSpy, *kbd.Keyboard) {
	p := &pipe{}
	sys := &bootSpy{}
	kb := kbd.New(nil)
	s := New(p, sys, kb, handlers.NewUserFn(nil), logger.New(nil))
	return s, p, sys, kb
}

func ufnReply(t *testing.T, f proto.Frame) proto.UFNReply {
	t.Helper()
	r, err := proto.ParseUFNReply(f.Data)
	require.NoError(t, err)
	return r
}

func TestNopEchoes(t *testing.T) {
	s, p, _, _ := setup()
	p.send(t, proto.Frame{Cmd: proto.CmdNop, Data: []byte("ping")})
	s.StepOnce()

	got := p.frames()
	require.Len(t, got, 1)
	assert.Equal(t, proto.CmdNop.Reply(), got[0].Cmd)
	assert.Equal(t, []byte("ping"), got[0].Data)
}

func TestSetThenGetUFN(t *testing.T) {
	s, p, _, kb := setup()
	p.send(t, proto.SetUFN{UFN: 3, Code: 0x3D, Mod: kbd.ModLeftAlt, Toggle: uint8(kbd.ToggleOneShot)}.Frame())
	p.send(t, proto.GetUFN(3))
	s.StepOnce()

	got := p.frames()
	require.Len(t, got, 2)
	assert.Equal(t, proto.CmdSetUFN.Reply(), got[0].Cmd)
	want := proto.UFNReply{Err: proto.ErrSuccess, UFN: 3, Code: 0x3D, Mod: kbd.ModLeftAlt, Toggle: uint8(kbd.ToggleOneShot)}
	assert.Equal(t, want, ufnReply(t, got[0]))
	assert.Equal(t, want, ufnReply(t, got[1]))

	c, _ := kb.Char(kbd.KeyUFN4)
	assert.Equal(t, uint8(0x3D), c.Code)
}

func TestUFNErrors(t *testing.T) {
	cases := []struct {
		name string
		req  proto.Frame
		want proto.UFNReply
	}{
		{"get short", proto.Frame{Cmd: proto.CmdGetUFN}, proto.UFNFailure(proto.ErrInvalidLength, 0xFF)},
		{"get range", proto.GetUFN(5), proto.UFNFailure(proto.ErrInvalidUFN, 0xFF)},
		{"set short", proto.Frame{Cmd: proto.CmdSetUFN, Data: []byte{0, 4, 0}}, proto.UFNFailure(proto.ErrInvalidLength, 0xFF)},
		{"set range", proto.SetUFN{UFN: 9, Code: 4}.Frame(), proto.UFNFailure(proto.ErrInvalidUFN, 9)},
		{"set key", proto.SetUFN{UFN: 1, Code: kbd.KeyCodeInvalid}.Frame(), proto.UFNFailure(proto.ErrInvalidKey, 1)},
		{"set mode", proto.SetUFN{UFN: 1, Code: 4, Toggle: 3}.Frame(), proto.UFNFailure(proto.ErrInvalidToggleMode, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, _, _ := setup()
			p.send(t, tc.req)
			s.StepOnce()
			got := p.frames()
			require.Len(t, got, 1)
			assert.Equal(t, tc.req.Cmd.Reply(), got[0].Cmd)
			assert.Equal(t, tc.want, ufnReply(t, got[0]))
		})
	}
}

func TestResetUFN(t *testing.T) {
	s, p, _, kb := setup()
	p.send(t, proto.SetUFN{UFN: 0, Code: 0x3A, Mod: 1, Toggle: 1}.Frame())
	p.send(t, proto.Frame{Cmd: proto.CmdResetUFN})
	s.StepOnce()

	got := p.frames()
	require.Len(t, got, 2)
	assert.Equal(t, proto.CmdResetUFN.Reply(), got[1].Cmd)

	rec, _ := kb.Record(kbd.KeyUFN1)
	assert.Equal(t, kbd.KeyCodeNone, rec.Char.Code)
	assert.Equal(t, kbd.ToggleNone, rec.ToggleMode)
}

func TestFlashModeRepliesFirst(t *testing.T) {
	s, p, sys, _ := setup()
	p.send(t, proto.Frame{Cmd: proto.CmdFlashMode})
	s.StepOnce()
	require.Len(t, p.frames(), 1)
	assert.Zero(t, sys.calls)

	s.StepOnce()
	assert.Equal(t, 1, sys.calls)
	s.StepOnce()
	assert.Equal(t, 1, sys.calls)

	sys.err = errors.New("nope")
	p.send(t, proto.Frame{Cmd: proto.CmdFlashMode})
	s.StepOnce()
	s.StepOnce()
	assert.Equal(t, 2, sys.calls)
}

func TestCorruptFrameIgnored(t *testing.T) {
	s, p, _, _ := setup()
	b, err := proto.Frame{Cmd: proto.CmdNop, Data: []byte{1}}.Encode()
	require.NoError(t, err)
	b[len(b)-1] ^= 0xFF
	p.in.Write([]byte{0xAA, 0x55})
	p.in.Write(b)
	p.send(t, proto.Frame{Cmd: proto.CmdNop, Data: []byte{2}})
	s.StepOnce()

	got := p.frames()
	require.Len(t, got, 1)
	assert.Equal(t, []byte{2}, got[0].Data)
	assert.Equal(t, 1, s.Dropped())
}

func TestKeyNotifications(t *testing.T) {
	s, p, _, kb := setup()
	s.OnKeyNotify(kb, kbd.KeyNum7, kbd.Rising)
	s.OnKeyNotify(kb, kbd.KeyNum7, kbd.High)

	got := p.frames()
	require.Len(t, got, 2)
	ev, err := proto.ParseKeyEvent(got[0])
	require.NoError(t, err)
	assert.Equal(t, proto.KeyEvent{Key: uint8(kbd.KeyNum7), State: uint8(kbd.Rising)}, ev)
}
