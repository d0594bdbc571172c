package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplenp/hal"
	"simplenp/npos/board"
	"simplenp/npos/kbd"
	"simplenp/npos/modes"
	"simplenp/npos/proto"
)

type fakeFB struct{ buf []byte }

func (f *fakeFB) Width() int              { return hal.DisplayWidth }
func (f *fakeFB) Height() int             { return hal.DisplayHeight }
func (f *fakeFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *fakeFB) StrideBytes() int        { return hal.DisplayWidth * 2 }
func (f *fakeFB) Buffer() []byte          { return f.buf }
func (f *fakeFB) ClearRGB(r, g, b uint8) {
	px := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i], f.buf[i+1] = byte(px), byte(px>>8)
	}
}
func (f *fakeFB) Present() error               { return nil }
func (f *fakeFB) Framebuffer() hal.Framebuffer { return f }

type fakeLEDs struct{ mask uint8 }

func (b *fakeLEDs) Count() int                 { return 8 }
func (b *fakeLEDs) WriteMask(mask uint8) error { b.mask = mask; return nil }

// lit reports an active-low LED.
func (b *fakeLEDs) lit(led int) bool { return b.mask&(1<<led) == 0 }

type report struct {
	mod  uint8
	keys [hal.HIDReportKeys]uint8
}

type fakeHID struct {
	reports []report
	leds    uint8
}

func (h *fakeHID) SendReport(mod uint8, keys [hal.HIDReportKeys]uint8) error {
	h.reports = append(h.reports, report{mod, keys})
	return nil
}

func (h *fakeHID) HostLEDs() uint8 { return h.leds }

func (h *fakeHID) last() report {
	if len(h.reports) == 0 {
		return report{}
	}
	return h.reports[len(h.reports)-1]
}

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

type fakeSystem struct{ boots int }

func (s *fakeSystem) EnterBootloader() error { s.boots++; return nil }

type fakeHAL struct {
	km     *hal.KeyMatrix
	fb     *fakeFB
	leds   *fakeLEDs
	hid    *fakeHID
	serial *pipe
	ticks  chan uint64
	seq    uint64
	sys    *fakeSystem
	lines  []string
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		km:     hal.NewKeyMatrix(board.Rows, board.Cols),
		fb:     &fakeFB{buf: make([]byte, hal.DisplayWidth*hal.DisplayHeight*2)},
		leds:   &fakeLEDs{mask: 0xFF},
		hid:    &fakeHID{leds: hal.HostLEDNumLock},
		serial: &pipe{},
		ticks:  make(chan uint64, 1024),
		sys:    &fakeSystem{},
	}
}

func (h *fakeHAL) Logger() hal.Logger       { return h }
func (h *fakeHAL) GPIO() hal.GPIO           { return h.km.GPIO() }
func (h *fakeHAL) Display() hal.Display     { return h.fb }
func (h *fakeHAL) LEDBank() hal.LEDBank     { return h.leds }
func (h *fakeHAL) HID() hal.HID             { return h.hid }
func (h *fakeHAL) Serial() hal.Serial       { return h.serial }
func (h *fakeHAL) Time() hal.Time           { return h }
func (h *fakeHAL) System() hal.System       { return h.sys }
func (h *fakeHAL) Ticks() <-chan uint64     { return h.ticks }
func (h *fakeHAL) WriteLineString(s string) { h.lines = append(h.lines, s) }
func (h *fakeHAL) WriteLineBytes(b []byte)  { h.lines = append(h.lines, string(b)) }

func (h *fakeHAL) advance(ms int) {
	for i := 0; i < ms; i++ {
		h.seq++
		h.ticks <- h.seq
	}
}

func (h *fakeHAL) frames(t *testing.T) []proto.Frame {
	t.Helper()
	var (
		d   proto.Decoder
		out []proto.Frame
	)
	for _, b := range h.serial.out.Bytes() {
		if f, ok := d.Push(b); ok {
			out = append(out, proto.Frame{Cmd: f.Cmd, Data: append([]byte(nil), f.Data...)})
		}
	}
	h.serial.out.Reset()
	return out
}

func (h *fakeHAL) send(t *testing.T, f proto.Frame) {
	t.Helper()
	b, err := f.Encode()
	require.NoError(t, err)
	h.serial.in.Write(b)
}

func boot(t *testing.T, cfg Config) (*fakeHAL, func()) {
	t.Helper()
	cfg.Settle = func(time.Duration) {}
	h := newFakeHAL()
	step := NewWithConfig(h, cfg)
	return h, func() {
		t.Helper()
		require.NoError(t, step())
	}
}

func TestNumpadReportsKeys(t *testing.T) {
	h, step := boot(t, Config{})
	step()

	h.km.Set(int(kbd.KeyNum7), true)
	step()
	assert.Equal(t, kbd.KeyCodeKP7, h.hid.last().keys[0])

	step()
	h.km.Set(int(kbd.KeyNum7), false)
	step()
	assert.Equal(t, report{}, h.hid.last())

	var notified []proto.KeyEvent
	for _, f := range h.frames(t) {
		if f.Cmd != proto.CmdNotifyKey {
			continue
		}
		ev, err := proto.ParseKeyEvent(f)
		require.NoError(t, err)
		notified = append(notified, ev)
	}
	require.NotEmpty(t, notified)
	assert.Equal(t, uint8(kbd.KeyNum7), notified[0].Key)
	assert.Equal(t, uint8(kbd.Rising), notified[0].State)
}

func TestHostNumLockDrivesLED(t *testing.T) {
	h, step := boot(t, Config{})
	step()
	step()
	assert.False(t, h.leds.lit(board.LEDNumLock), "host numlock on: numeric layer")

	h.hid.leds = 0
	step()
	step()
	assert.True(t, h.leds.lit(board.LEDNumLock))
}

func TestUserFnOverCDC(t *testing.T) {
	h, step := boot(t, Config{})
	step()

	h.send(t, proto.SetUFN{UFN: 0, Code: kbd.KeyCodeF1, Toggle: uint8(kbd.ToggleNone)}.Frame())
	step()

	frames := h.frames(t)
	require.Len(t, frames, 1)
	assert.Equal(t, proto.CmdSetUFN.Reply(), frames[0].Cmd)
	r, err := proto.ParseUFNReply(frames[0].Data)
	require.NoError(t, err)
	assert.Equal(t, proto.ErrSuccess, r.Err)
	assert.Equal(t, kbd.KeyCodeF1, r.Code)

	h.km.Set(int(kbd.KeyUFN1), true)
	step()
	assert.Equal(t, kbd.KeyCodeF1, h.hid.last().keys[0])
	step()
	assert.True(t, h.leds.lit(board.LEDUFN1))
}

func TestFlashModeAfterReply(t *testing.T) {
	h, step := boot(t, Config{})
	step()

	h.send(t, proto.Frame{Cmd: proto.CmdFlashMode})
	step()
	require.Len(t, h.frames(t), 1)
	assert.Zero(t, h.sys.boots)

	step()
	assert.Equal(t, 1, h.sys.boots)
}

func TestWelcomeHoldsInput(t *testing.T) {
	h, step := boot(t, Config{Welcome: true, Frames: []modes.Frame{{DurationMs: 10, Text: "hi", X: 4, Y: 20}}})
	step()

	h.km.Set(int(kbd.KeyNum7), true)
	step()
	assert.Empty(t, h.hid.reports)

	h.advance(10)
	step()
	step()
	assert.Equal(t, kbd.KeyCodeKP7, h.hid.last().keys[0])
}

func TestMacroReplaysRecordedKeys(t *testing.T) {
	h, step := boot(t, Config{})
	step()

	tap := func(key kbd.Key) {
		h.km.Set(int(key), true)
		step()
		step()
		h.advance(3)
		h.km.Set(int(key), false)
		step()
		step()
	}

	tap(kbd.KeyMacroRecord)
	assert.True(t, h.leds.lit(board.LEDMacroRecord))
	h.advance(5)
	tap(kbd.KeyNum1)
	tap(kbd.KeyMacroRecord)
	step()
	assert.False(t, h.leds.lit(board.LEDMacroRecord))

	h.hid.reports = nil
	tap(kbd.KeyMacroPlay)
	for i := 0; i < 10 && !containsKey(h.hid.reports, kbd.KeyCodeKP1); i++ {
		h.advance(1)
		step()
	}
	assert.True(t, containsKey(h.hid.reports, kbd.KeyCodeKP1), "replayed key reported")
}

func containsKey(reports []report, code uint8) bool {
	for _, r := range reports {
		for _, k := range r.keys {
			if k == code {
				return true
			}
		}
	}
	return false
}

type boom struct{}

func (boom) OnKeyNotify(*kbd.Keyboard, kbd.Key, kbd.LevelState) { panic("boom") }
func (boom) OnPostKeyNotify(*kbd.Keyboard)                      {}

func TestPanicHaltsAndShowsScreen(t *testing.T) {
	h := newFakeHAL()
	s := newSystem(h, Config{Settle: func(time.Duration) {}})
	require.NoError(t, s.step())
	s.kb.Listen(boom{})

	h.km.Set(int(kbd.KeyNum5), true)
	err := s.step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, h.lines, "SimpleNP panic:")
	off := (hal.DisplayWidth - 1) * 2
	assert.Equal(t, []byte{0xFF, 0xFF}, h.fb.buf[off:off+2], "screen cleared to white")

	h.km.Set(int(kbd.KeyNum5), false)
	assert.Equal(t, err, s.step())
}
