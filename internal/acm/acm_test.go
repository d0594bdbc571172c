package acm_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplenp/internal/acm"
	"simplenp/internal/acm/acmtest"
	"simplenp/npos/kbd"
	"simplenp/npos/proto"
)

func dial(t *testing.T, opts ...acm.Option) (*acmtest.Device, *acm.Conn) {
	t.Helper()
	dev, err := acmtest.Start()
	require.NoError(t, err)
	t.Cleanup(dev.Close)

	c, err := acm.Dial(context.Background(), dev.Addr(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return dev, c
}

func TestPing(t *testing.T) {
	_, c := dial(t)
	rtt, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Positive(t, rtt)
}

func TestUFNRoundTrip(t *testing.T) {
	dev, c := dial(t)
	ctx := context.Background()

	r, err := c.SetUFN(ctx, proto.SetUFN{UFN: 2, Code: 0x68, Mod: kbd.ModLeftCtrl, Toggle: uint8(kbd.ToggleOneShot)})
	require.NoError(t, err)
	assert.Equal(t, uint8(2), r.UFN)

	r, err = c.GetUFN(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, proto.UFNReply{Err: proto.ErrSuccess, UFN: 2, Code: 0x68, Mod: kbd.ModLeftCtrl, Toggle: uint8(kbd.ToggleOneShot)}, r)

	ch, mode := dev.UFN(2)
	assert.Equal(t, uint8(0x68), ch.Code)
	assert.Equal(t, kbd.ToggleOneShot, mode)

	require.NoError(t, c.ResetUFN(ctx))
	_, mode = dev.UFN(2)
	assert.Equal(t, kbd.ToggleNone, mode)
}

func TestDeviceErrorsSurface(t *testing.T) {
	_, c := dial(t)
	ctx := context.Background()

	r, err := c.GetUFN(ctx, 9)
	assert.ErrorIs(t, err, proto.ErrInvalidUFN)
	assert.Equal(t, uint8(0xFF), r.UFN)

	_, err = c.SetUFN(ctx, proto.SetUFN{UFN: 0, Code: 0x04, Toggle: 7})
	assert.ErrorIs(t, err, proto.ErrInvalidToggleMode)
}

func TestKeyEvents(t *testing.T) {
	dev, c := dial(t)
	_, err := c.Ping(context.Background())
	require.NoError(t, err)

	dev.Press(kbd.KeyNum5, true)

	select {
	case ev := <-c.Events():
		assert.Equal(t, uint8(kbd.KeyNum5), ev.Key)
		assert.Equal(t, uint8(kbd.Rising), ev.State)
	case <-time.After(2 * time.Second):
		t.Fatal("no key event")
	}
}

func TestFlashMode(t *testing.T) {
	dev, c := dial(t)
	require.NoError(t, c.FlashMode(context.Background()))
	assert.Eventually(t, func() bool { return dev.Boots() == 1 }, time.Second, time.Millisecond)
}

func TestTimeout(t *testing.T) {
	dev, c := dial(t, acm.WithTimeout(20*time.Millisecond))
	dev.Mute(true)
	_, err := c.Ping(context.Background())
	assert.ErrorIs(t, err, acm.ErrTimeout)
}

func TestClosed(t *testing.T) {
	a, b := net.Pipe()
	c := acm.New(a)
	require.NoError(t, b.Close())

	<-c.Done()
	assert.ErrorIs(t, c.Err(), acm.ErrClosed)
	_, err := c.Ping(context.Background())
	assert.True(t, errors.Is(err, acm.ErrClosed))
	_, open := <-c.Events()
	assert.False(t, open)
}

func TestDialSerialMissing(t *testing.T) {
	_, err := acm.Dial(context.Background(), "/nonexistent/ttyACM9")
	assert.Error(t, err)
}
