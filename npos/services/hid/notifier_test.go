package hid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplenp/hal"
	"simplenp/npos/kbd"
	"simplenp/npos/logger"
)

type fakeHID struct {
	reports []Report
	leds    uint8
}

func (h *fakeHID) SendReport(mod uint8, keys [hal.HIDReportKeys]uint8) error {
	h.reports = append(h.reports, Report{Mod: mod, Keys: keys})
	return nil
}

func (h *fakeHID) HostLEDs() uint8 { return h.leds }

type pad struct{ bits uint32 }

func (p *pad) ScanOnce() bool { return true }
func (p *pad) IsEmpty() bool  { return false }
func (p *pad) TakeState(k kbd.Key) (bool, bool) {
	if !k.Physical() {
		return false, false
	}
	return p.bits&(1<<k) != 0, true
}

// sink claims nothing so reports come from listeners alone.
type sink struct{}

func (sink) OnKeyUpdated(*kbd.Keyboard, kbd.Key, kbd.LevelState) bool { return false }

func setup(t *testing.T, opts ...Option) (*kbd.Keyboard, *pad, *fakeHID, *Notifier) {
	t.Helper()
	kb := kbd.New(nil)
	p := &pad{}
	dev := &fakeHID{}
	n := New(dev, logger.New(nil), opts...)
	require.True(t, kb.PushScanner(p))
	require.True(t, kb.PushHandler(sink{}))
	require.True(t, kb.Listen(n))
	kb.Enable()
	return kb, p, dev, n
}

func keys(codes ...uint8) [hal.HIDReportKeys]uint8 {
	var k [hal.HIDReportKeys]uint8
	copy(k[:], codes)
	return k
}

func TestReportsFollowPressedKeys(t *testing.T) {
	kb, p, dev, n := setup(t)

	p.bits = 1<<kbd.KeyNum1 | 1<<kbd.KeyNum2
	kb.ScanOnce()
	require.Len(t, dev.reports, 1)
	assert.Equal(t, keys(kbd.KeyCodeKP1, kbd.KeyCodeKP2), dev.reports[0].Keys)

	kb.ScanOnce() // Rising -> High, same report
	assert.Len(t, dev.reports, 1)

	p.bits = 1 << kbd.KeyNum2
	kb.ScanOnce()
	require.Len(t, dev.reports, 2)
	assert.Equal(t, keys(kbd.KeyCodeKP2), dev.reports[1].Keys)
	assert.Equal(t, dev.reports[1], n.Last())

	p.bits = 0
	kb.ScanOnce()
	assert.True(t, dev.reports[2].Empty())
}

func TestReportOrderIsRecency(t *testing.T) {
	kb, p, dev, _ := setup(t)

	p.bits = 1 << kbd.KeyNum9
	kb.ScanOnce()
	kb.ScanOnce()
	p.bits |= 1 << kbd.KeyNum3
	kb.ScanOnce()

	assert.Equal(t, keys(kbd.KeyCodeKP3, kbd.KeyCodeKP9), dev.reports[len(dev.reports)-1].Keys)
}

func TestReportCapsAtSixCodes(t *testing.T) {
	kb, p, dev, _ := setup(t)
	for _, k := range kbd.NumericKeys {
		p.bits |= 1 << k
	}
	kb.ScanOnce()
	last := dev.reports[len(dev.reports)-1]
	for _, c := range last.Keys {
		assert.NotZero(t, c)
	}
}

func TestModifierUsageBecomesBit(t *testing.T) {
	kb, p, dev, _ := setup(t)
	kb.SetChar(kbd.KeyUFN1, kbd.KeyChar{Code: 0xE1})

	p.bits = 1 << kbd.KeyUFN1
	kb.ScanOnce()
	assert.Equal(t, Report{Mod: kbd.ModLeftShift}, dev.reports[0])
}

func TestToggleLatchIsReported(t *testing.T) {
	kb, p, dev, _ := setup(t)
	kb.Edit(kbd.KeyUFN2, func(rec *kbd.KeyRecord) {
		rec.Char.Code = kbd.KeyCodeF1
		rec.ToggleMode = kbd.ToggleToggle
	})

	// Held but not latched: nothing.
	p.bits = 1 << kbd.KeyUFN2
	kb.ScanOnce()
	assert.Empty(t, dev.reports)

	kb.Edit(kbd.KeyUFN2, func(rec *kbd.KeyRecord) { rec.Toggle = 0xFF })
	p.bits = 0
	kb.ScanOnce()
	require.Len(t, dev.reports, 1)
	assert.Equal(t, keys(kbd.KeyCodeF1), dev.reports[0].Keys)
}

type disarmSpy struct{ keys []kbd.Key }

func (d *disarmSpy) Disarm(kb *kbd.Keyboard, key kbd.Key) {
	d.keys = append(d.keys, key)
	kb.Edit(key, func(rec *kbd.KeyRecord) { rec.Toggle = 0 })
}

func TestOneShotRidesNextReport(t *testing.T) {
	spy := &disarmSpy{}
	kb, p, dev, _ := setup(t, WithOneShots(spy))
	kb.Edit(kbd.KeyUFN3, func(rec *kbd.KeyRecord) {
		rec.Char = kbd.KeyChar{Mod: kbd.ModLeftShift}
		rec.ToggleMode = kbd.ToggleOneShot
		rec.Toggle = 0xFF
	})

	// Armed alone: held one-shot keys are not reported.
	p.bits = 1 << kbd.KeyUFN3
	kb.ScanOnce()
	assert.Empty(t, dev.reports)
	p.bits = 0
	kb.ScanOnce()
	kb.ScanOnce()
	assert.Empty(t, dev.reports)

	p.bits = 1 << kbd.KeyNum7
	kb.ScanOnce()
	require.Len(t, dev.reports, 1)
	assert.Equal(t, Report{Mod: kbd.ModLeftShift, Keys: keys(kbd.KeyCodeKP7)}, dev.reports[0])
	assert.Equal(t, []kbd.Key{kbd.KeyUFN3}, spy.keys)

	kb.ScanOnce()
	require.Len(t, dev.reports, 2)
	assert.Equal(t, Report{Keys: keys(kbd.KeyCodeKP7)}, dev.reports[1])
}

func TestReleaseOnDetachAndDisable(t *testing.T) {
	kb, p, dev, n := setup(t)
	p.bits = 1 << kbd.KeyEnter
	kb.ScanOnce()
	require.Len(t, dev.reports, 1)

	kb.Disable()
	require.Len(t, dev.reports, 2)
	assert.True(t, dev.reports[1].Empty())

	kb.Enable()
	kb.ScanOnce()
	kb.ScanOnce()

	kb.Unlisten(n)
	assert.False(t, n.Active())
	assert.True(t, dev.reports[len(dev.reports)-1].Empty())
}

func TestHostLEDsPolled(t *testing.T) {
	var got []uint8
	kb, _, dev, n := setup(t, WithHostLEDs(func(_ *kbd.Keyboard, leds uint8) { got = append(got, leds) }))

	n.StepOnce(kb)
	n.StepOnce(kb)
	dev.leds = hal.HostLEDNumLock
	n.StepOnce(kb)
	assert.Equal(t, []uint8{0, hal.HostLEDNumLock}, got)

	kb.Unlisten(n)
	dev.leds = 0
	n.StepOnce(kb)
	assert.Len(t, got, 2)
}
