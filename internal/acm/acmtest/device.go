// Package acmtest runs a simulated keypad on a loopback TCP port for tests
// of code that speaks to the configuration channel.
package acmtest

import (
	"bytes"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"simplenp/npos/kbd"
	"simplenp/npos/kbd/handlers"
	"simplenp/npos/logger"
	"simplenp/npos/services/cdc"
)

// Device is a keyboard pipeline with the configuration service attached,
// stepped every millisecond.
type Device struct {
	ln   net.Listener
	stop chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	kb     *kbd.Keyboard
	ufn    *handlers.UserFn
	svc    *cdc.Service
	serial *connSerial
	pad    pad

	boots atomic.Int32
	mute  atomic.Bool
}

// Start listens on 127.0.0.1 and serves one client at a time.
func Start() (*Device, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	d := &Device{ln: ln, stop: make(chan struct{}), serial: &connSerial{}}
	d.kb = kbd.New(nil)
	d.ufn = handlers.NewUserFn(nil)
	d.svc = cdc.New(d.serial, bootCounter{d}, d.kb, d.ufn, logger.New(nil))
	d.kb.PushScanner(&d.pad)
	d.kb.PushHandler(d.ufn)
	d.kb.Listen(d.svc)
	d.kb.Enable()

	d.wg.Add(2)
	go d.accept()
	go d.run()
	return d, nil
}

// Addr returns the address to dial, tcp://127.0.0.1:port.
func (d *Device) Addr() string { return "tcp://" + d.ln.Addr().String() }

// Close stops the device and drops the client.
func (d *Device) Close() {
	select {
	case <-d.stop:
		return
	default:
	}
	close(d.stop)
	_ = d.ln.Close()
	d.serial.attach(nil)
	d.wg.Wait()
}

// Press closes or opens a switch.
func (d *Device) Press(key kbd.Key, down bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if down {
		d.pad.bits |= 1 << key
	} else {
		d.pad.bits &^= 1 << key
	}
}

// UFN returns the current mapping of user function key i (0-based).
func (d *Device) UFN(i int) (kbd.KeyChar, kbd.ToggleMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, m, _ := d.ufn.Get(d.kb, i)
	return c, m
}

// Boots counts bootloader requests.
func (d *Device) Boots() int { return int(d.boots.Load()) }

// Connected reports whether a client is attached.
func (d *Device) Connected() bool {
	d.serial.mu.Lock()
	defer d.serial.mu.Unlock()
	return d.serial.conn != nil
}

// Mute makes the device swallow requests without replying.
func (d *Device) Mute(on bool) { d.mute.Store(on) }

func (d *Device) accept() {
	defer d.wg.Done()
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		d.serial.attach(conn)
	}
}

func (d *Device) run() {
	defer d.wg.Done()
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
		}
		d.mu.Lock()
		if !d.mute.Load() {
			d.svc.StepOnce()
		}
		d.kb.ScanOnce()
		d.mu.Unlock()
	}
}

type bootCounter struct{ d *Device }

func (b bootCounter) EnterBootloader() error {
	b.d.boots.Add(1)
	return nil
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

// connSerial buffers whatever the client sends so the service can poll it
// without blocking.
type connSerial struct {
	mu   sync.Mutex
	conn net.Conn
	in   bytes.Buffer
}

func (s *connSerial) attach(conn net.Conn) {
	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.in.Reset()
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	if conn != nil {
		go s.pump(conn)
	}
}

func (s *connSerial) pump(conn net.Conn) {
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.mu.Lock()
			if s.conn == conn {
				s.in.Write(buf[:n])
			}
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *connSerial) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.in.Len() == 0 {
		return 0, nil
	}
	return s.in.Read(p)
}

func (s *connSerial) Write(p []byte) (int, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return len(p), nil
	}
	return conn.Write(p)
}
