package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplenp/npos/kbd"
)

type clock struct{ ms uint32 }

func (c *clock) now() uint32 { return c.ms }

// released claims every key and reports it up.
type released struct{}

func (*released) ScanOnce() bool                 { return true }
func (*released) IsEmpty() bool                  { return true }
func (*released) TakeState(kbd.Key) (bool, bool) { return false, true }

func recordSample(t *testing.T, c *clock, e *Engine) {
	t.Helper()
	require.True(t, e.Record(nil))

	c.ms = 5
	e.OnKeyNotify(nil, kbd.KeyNum1, kbd.Rising)
	c.ms = 7
	e.OnKeyNotify(nil, kbd.KeyNum1, kbd.High)
	c.ms = 20
	e.OnKeyNotify(nil, kbd.KeyNum1, kbd.Falling)
	c.ms = 21
	e.OnKeyNotify(nil, kbd.KeyMacroRecord, kbd.Rising)
	c.ms = 25
	e.OnKeyNotify(nil, kbd.KeyNum2, kbd.Rising)

	require.True(t, e.StopRecord())
}

func TestRecordSkipsDuplicatesAndMacroKeys(t *testing.T) {
	c := &clock{}
	e := New(c.now)
	recordSample(t, c, e)

	assert.Equal(t, []Record{
		{Delay: 5, Key: kbd.KeyNum1, Down: true},
		{Delay: 15, Key: kbd.KeyNum1, Down: false},
		{Delay: 5, Key: kbd.KeyNum2, Down: true},
	}, e.Records())
	assert.Equal(t, Idle, e.State())
}

func TestRecordStopsWhenFull(t *testing.T) {
	c := &clock{}
	e := New(c.now)
	stopped := 0
	require.True(t, e.Record(func() { stopped++ }))

	for i := 0; i < Slots; i++ {
		c.ms++
		e.OnKeyNotify(nil, kbd.KeyNum5, kbd.LevelState(i%2*2))
	}
	assert.Equal(t, Slots, e.Len())
	assert.Equal(t, 1, stopped)
	assert.False(t, e.Recording())
}

func TestDelaySaturates(t *testing.T) {
	c := &clock{}
	e := New(c.now)
	require.True(t, e.Record(nil))
	c.ms = 100000
	e.OnKeyNotify(nil, kbd.KeyDot, kbd.Rising)
	assert.Equal(t, uint16(0xFFFF), e.Records()[0].Delay)
}

func TestBusyEngineRefuses(t *testing.T) {
	c := &clock{}
	e := New(c.now)
	require.True(t, e.Record(nil))
	assert.False(t, e.Play(nil))
	assert.False(t, e.Stop())
	assert.True(t, e.StopRecord())
	assert.False(t, e.StopRecord())
}

func TestPlaybackTimeline(t *testing.T) {
	c := &clock{}
	e := New(c.now)
	recordSample(t, c, e)

	done := false
	c.ms = 100
	require.True(t, e.Play(func() { done = true }))

	step := func(ms uint32) {
		c.ms = ms
		require.True(t, e.ScanOnce())
	}
	down := func(k kbd.Key) bool {
		v, ok := e.TakeState(k)
		require.True(t, ok)
		return v
	}

	step(100)
	assert.False(t, down(kbd.KeyNum1))
	assert.True(t, e.IsEmpty())

	step(105)
	assert.True(t, down(kbd.KeyNum1))
	assert.False(t, e.IsEmpty())

	step(119)
	assert.True(t, down(kbd.KeyNum1))
	assert.True(t, e.IsEmpty())

	step(120)
	assert.False(t, down(kbd.KeyNum1))
	assert.False(t, done)

	step(125)
	assert.True(t, down(kbd.KeyNum2))
	assert.True(t, done)
	assert.False(t, e.Playing())
	assert.False(t, e.ScanOnce())

	_, ok := e.TakeState(kbd.KeyMacroPlay)
	assert.False(t, ok)
	_, ok = e.TakeState(kbd.KeyHidden)
	assert.False(t, ok)
}

func TestPlaybackDrivesKeyboard(t *testing.T) {
	c := &clock{}
	e := New(c.now)
	recordSample(t, c, e)

	kb := kbd.New(nil)
	require.True(t, kb.PushScanner(&released{}))
	require.True(t, kb.PushScanner(e))
	kb.Enable()

	c.ms = 1000
	require.True(t, e.Play(nil))

	at := func(ms uint32) {
		c.ms = ms
		kb.ScanOnce()
	}

	at(1000)
	assert.True(t, kb.CheckLevel(kbd.KeyNum1, kbd.Low))
	at(1005)
	assert.True(t, kb.CheckLevel(kbd.KeyNum1, kbd.Rising))
	assert.Equal(t, kbd.KeyNum1, kb.Ordered()[0])
	at(1006)
	assert.True(t, kb.CheckLevel(kbd.KeyNum1, kbd.High))
	at(1020)
	assert.True(t, kb.CheckLevel(kbd.KeyNum1, kbd.Falling))
	at(1025)
	assert.True(t, kb.CheckLevel(kbd.KeyNum2, kbd.Rising))
	assert.False(t, e.Playing())

	// The released scanner owns the keys again.
	for ms := uint32(1026); ms < 1030; ms++ {
		at(ms)
	}
	assert.True(t, kb.CheckLevel(kbd.KeyNum2, kbd.Low))
	assert.True(t, kb.CheckLevel(kbd.KeyNum1, kbd.Low))
}
