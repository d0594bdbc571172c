package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplenp/hal"
	"simplenp/npos/kbd"
	"simplenp/npos/logger"
	"simplenp/npos/services/console"
)

type trace struct{ calls []string }

type fakeMode struct {
	name   string
	refuse bool
	tr     *trace
	steps  int
}

func (m *fakeMode) Name() string { return m.name }
func (m *fakeMode) Enter() bool {
	m.tr.calls = append(m.tr.calls, "enter "+m.name)
	return !m.refuse
}
func (m *fakeMode) Leave()    { m.tr.calls = append(m.tr.calls, "leave "+m.name) }
func (m *fakeMode) StepOnce() { m.steps++ }

func TestSwitcherEntersBeforeLeaving(t *testing.T) {
	tr := &trace{}
	a := &fakeMode{name: "a", tr: tr}
	b := &fakeMode{name: "b", tr: tr}
	sw := NewSwitcher(a, logger.New(nil))

	sw.StepOnce()
	assert.Same(t, a, sw.Current())
	assert.Equal(t, 1, a.steps)

	require.True(t, sw.Set(b))
	assert.False(t, sw.Set(b))
	assert.Equal(t, []string{"enter a", "enter b", "leave a"}, tr.calls)
}

func TestSwitcherKeepsModeOnRefusal(t *testing.T) {
	tr := &trace{}
	a := &fakeMode{name: "a", tr: tr}
	b := &fakeMode{name: "b", tr: tr, refuse: true}
	sw := NewSwitcher(a, logger.New(nil))
	sw.Current()

	assert.False(t, sw.Set(b))
	assert.Same(t, a, sw.Current())
	assert.NotContains(t, tr.calls, "leave a")

	assert.False(t, sw.Set(nil), "default is already current")
}

type fakeHost struct {
	listening bool
	steps     int
}

func (h *fakeHost) OnKeyNotify(*kbd.Keyboard, kbd.Key, kbd.LevelState) {}
func (h *fakeHost) OnPostKeyNotify(*kbd.Keyboard)                      {}
func (h *fakeHost) OnListen(*kbd.Keyboard)                             { h.listening = true }
func (h *fakeHost) OnUnlisten(*kbd.Keyboard)                           { h.listening = false }
func (h *fakeHost) StepOnce(*kbd.Keyboard)                             { h.steps++ }

type fakeFB struct {
	buf []byte
}

func (f *fakeFB) Width() int                   { return 160 }
func (f *fakeFB) Height() int                  { return 80 }
func (f *fakeFB) Format() hal.PixelFormat      { return hal.PixelFormatRGB565 }
func (f *fakeFB) StrideBytes() int             { return 320 }
func (f *fakeFB) Buffer() []byte               { return f.buf }
func (f *fakeFB) ClearRGB(r, g, b uint8)       { clear(f.buf) }
func (f *fakeFB) Present() error               { return nil }
func (f *fakeFB) Framebuffer() hal.Framebuffer { return f }

func (f *fakeFB) lit() bool {
	for _, b := range f.buf {
		if b != 0 {
			return true
		}
	}
	return false
}

type lastKey struct{ ch byte }

func (l *lastKey) Typed(kb *kbd.Keyboard) byte {
	if kb.RecentKey(kbd.Falling) == kbd.KeyInvalid {
		return 0
	}
	return l.ch
}

type pad struct{ bits uint32 }

func (p *pad) ScanOnce() bool { return true }
func (p *pad) IsEmpty() bool  { return false }
func (p *pad) TakeState(k kbd.Key) (bool, bool) {
	if !k.Physical() {
		return false, false
	}
	return p.bits&(1<<k) != 0, true
}

type nop struct{}

func (nop) OnKeyUpdated(*kbd.Keyboard, kbd.Key, kbd.LevelState) bool { return false }

func TestWelcomeThenNumpad(t *testing.T) {
	var ms uint32
	now := func() uint32 { return ms }

	fb := &fakeFB{buf: make([]byte, 160*80*2)}
	con := console.New(fb, nil)
	kb := kbd.New(nil)
	host := &fakeHost{}
	p := &pad{}
	kb.PushScanner(p)
	kb.PushHandler(nop{})

	numpad := NewNumpad(kb, host, con, &lastKey{ch: '7'})
	sw := NewSwitcher(numpad, logger.New(nil))
	welcome := NewWelcome(sw, numpad, kb, host, con, now, []Frame{
		{DurationMs: 100, Text: "hi", X: 4, Y: 20},
		{DurationMs: 100, Text: "there", X: 4, Y: 40},
	})

	require.True(t, sw.Set(welcome))
	assert.False(t, kb.IsEnabled())
	assert.Equal(t, console.Graphic, con.Mode())

	ms = 5
	sw.StepOnce()
	assert.False(t, fb.lit(), "nothing typed in the first tenth")

	ms = 95
	sw.StepOnce()
	assert.True(t, fb.lit())
	assert.Same(t, welcome, sw.Current())

	ms = 150
	sw.StepOnce()
	assert.Same(t, welcome, sw.Current())

	ms = 200
	sw.StepOnce()
	assert.Same(t, numpad, sw.Current())
	assert.True(t, kb.IsEnabled())
	assert.True(t, host.listening)
	assert.Equal(t, console.TTY, con.Mode())
	assert.False(t, fb.lit(), "console cleared")

	sw.StepOnce()
	assert.Equal(t, 1, host.steps)

	p.bits = 1 << kbd.KeyNum7
	kb.ScanOnce()
	kb.ScanOnce()
	assert.False(t, fb.lit())
	p.bits = 0
	kb.ScanOnce()
	assert.True(t, fb.lit(), "released key echoed")

	require.True(t, sw.Set(welcome))
	assert.False(t, host.listening)
	assert.False(t, kb.IsEnabled())
}

func TestWelcomeWithoutFramesEndsAtOnce(t *testing.T) {
	tr := &trace{}
	next := &fakeMode{name: "next", tr: tr}
	sw := NewSwitcher(next, logger.New(nil))
	kb := kbd.New(nil)
	w := NewWelcome(sw, next, kb, nil, nil, func() uint32 { return 0 }, []Frame{})

	require.True(t, sw.Set(w))
	sw.StepOnce()
	assert.Same(t, next, sw.Current())
}
