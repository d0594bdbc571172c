//go:build !tinygo

package hal

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestParseScript(t *testing.T) {
	steps, err := ParseScript("40-6, 10+6,12+21")
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	want := []ScriptStep{{10, 6, true}, {12, 21, true}, {40, 6, false}}
	if len(steps) != len(want) {
		t.Fatalf("len = %d, want %d", len(steps), len(want))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps[%d] = %+v, want %+v", i, steps[i], want[i])
		}
	}

	for _, bad := range []string{"+6", "10+", "x+1", "10+25", "10*3"} {
		if _, err := ParseScript(bad); err == nil {
			t.Fatalf("ParseScript(%q): expected error", bad)
		}
	}
}

func TestRunHeadlessAppliesScript(t *testing.T) {
	var got *hostHAL
	steps := 0
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		got = h.(*hostHAL)
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Hz: 1000, Ticks: 5, Script: []ScriptStep{{At: 2, Index: 7, Closed: true}}}, HostConfig{})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 5 {
		t.Fatalf("steps = %d, want 5", steps)
	}
	if !got.matrix.Closed(7) {
		t.Fatal("expected switch 7 closed")
	}
}

func TestTCPSerialRoundTrip(t *testing.T) {
	s, err := listenSerial("127.0.0.1:0", &hostLogger{w: nil})
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	defer s.Close()

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte{0x02, 0x00}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 8)
	deadline := time.Now().Add(2 * time.Second)
	var n int
	for n == 0 && time.Now().Before(deadline) {
		n, _ = s.Read(buf)
		time.Sleep(time.Millisecond)
	}
	if n != 2 || buf[0] != 0x02 {
		t.Fatalf("Read = % x, want 02 00", buf[:n])
	}

	if _, err := s.Write([]byte{0x03}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(buf[:1]); err != nil || buf[0] != 0x03 {
		t.Fatalf("client Read = %x, %v", buf[0], err)
	}
}

func TestRunHeadlessTicksFollowHz(t *testing.T) {
	var ticks <-chan uint64
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		ticks = h.Time().Ticks()
		return func() error { return nil }
	}, HeadlessConfig{Hz: 500, Ticks: 3}, HostConfig{})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	// Three steps at 500 Hz cover 6 ms.
	var last uint64
	n := 0
	for len(ticks) > 0 {
		last = <-ticks
		n++
	}
	if n != 6 || last != 6 {
		t.Fatalf("got %d ticks ending at %d, want 6 ending at 6", n, last)
	}
}

func TestFramebufferTakesPresentedFrames(t *testing.T) {
	fb := newHostFramebuffer(2, 1)
	dst := make([]byte, 2*4)
	if !fb.takeFrame(dst) {
		t.Fatal("expected the first frame")
	}
	if fb.takeFrame(dst) {
		t.Fatal("expected no frame before Present")
	}

	fb.ClearRGB(255, 0, 0)
	_ = fb.Present()
	if !fb.takeFrame(dst) || dst[0] != 0xFF || dst[1] != 0 || dst[3] != 0xFF {
		t.Fatalf("frame = % x, want red", dst)
	}
	if fb.presented() != 1 {
		t.Fatalf("presented = %d, want 1", fb.presented())
	}
}
