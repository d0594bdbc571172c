// Package acm talks to the keypad's CDC ACM configuration channel, either
// on a serial tty or, for the host simulator, over tcp://host:port.
package acm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"simplenp/npos/proto"
)

var (
	ErrClosed  = errors.New("acm: connection closed")
	ErrTimeout = errors.New("acm: request timed out")
)

const (
	defaultTimeout = 2 * time.Second
	eventBuffer    = 64
)

// Conn is an open configuration channel. Requests are serialized; key
// notifications arrive on Events.
type Conn struct {
	rwc     io.ReadWriteCloser
	log     zerolog.Logger
	timeout time.Duration

	reqMu   sync.Mutex
	replies chan proto.Frame
	events  chan proto.KeyEvent
	dropped atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// Option configures a Conn.
type Option func(*Conn)

// WithTimeout bounds every request. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for protocol diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Conn) { c.log = l }
}

// Dial opens addr: tcp://host:port or a serial device path.
func Dial(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	if rest, ok := strings.CutPrefix(addr, "tcp://"); ok {
		var d net.Dialer
		nc, err := d.DialContext(ctx, "tcp", rest)
		if err != nil {
			return nil, fmt.Errorf("acm: dial %s: %w", addr, err)
		}
		return New(nc, opts...), nil
	}
	sp, err := openSerial(addr)
	if err != nil {
		return nil, err
	}
	return New(sp, opts...), nil
}

// New runs the protocol over an already open channel.
func New(rwc io.ReadWriteCloser, opts ...Option) *Conn {
	c := &Conn{
		rwc:     rwc,
		log:     zerolog.Nop(),
		timeout: defaultTimeout,
		replies: make(chan proto.Frame, 1),
		events:  make(chan proto.KeyEvent, eventBuffer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop()
	return c
}

func (c *Conn) readLoop() {
	defer close(c.events)

	var d proto.Decoder
	buf := make([]byte, 256)
	for {
		n, err := c.rwc.Read(buf)
		for _, b := range buf[:n] {
			if f, ok := d.Push(b); ok {
				c.dispatch(proto.Frame{Cmd: f.Cmd, Data: append([]byte(nil), f.Data...)})
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
				err = ErrClosed
			}
			c.fail(err)
			return
		}
	}
}

func (c *Conn) dispatch(f proto.Frame) {
	if f.Cmd == proto.CmdNotifyKey {
		ev, err := proto.ParseKeyEvent(f)
		if err != nil {
			c.log.Debug().Err(err).Msg("bad key notification")
			return
		}
		select {
		case c.events <- ev:
		default:
			c.dropped.Add(1)
		}
		return
	}
	if !f.Cmd.IsReply() {
		c.log.Debug().Stringer("cmd", f.Cmd).Msg("unexpected frame")
		return
	}
	select {
	case c.replies <- f:
	default:
		c.log.Debug().Stringer("cmd", f.Cmd).Msg("unsolicited reply")
	}
}

func (c *Conn) fail(err error) {
	c.errMu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errMu.Unlock()
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.rwc.Close()
	})
}

// Close closes the channel. Pending requests fail with ErrClosed.
func (c *Conn) Close() error {
	c.fail(ErrClosed)
	return nil
}

// Done is closed once the channel is gone.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns why the channel closed, or nil while it is open.
func (c *Conn) Err() error {
	select {
	case <-c.done:
	default:
		return nil
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Events delivers key notifications. It is closed with the channel. When
// the reader falls behind, notifications are dropped and counted.
func (c *Conn) Events() <-chan proto.KeyEvent { return c.events }

// Dropped returns the number of discarded key notifications.
func (c *Conn) Dropped() uint64 { return c.dropped.Load() }

// Request sends f and waits for its reply.
func (c *Conn) Request(ctx context.Context, f proto.Frame) (proto.Frame, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	select {
	case <-c.done:
		return proto.Frame{}, ErrClosed
	default:
	}
	for drained := false; !drained; {
		select {
		case <-c.replies:
		default:
			drained = true
		}
	}

	b, err := f.Encode()
	if err != nil {
		return proto.Frame{}, fmt.Errorf("acm: encode %s: %w", f.Cmd, err)
	}
	if _, err := c.rwc.Write(b); err != nil {
		return proto.Frame{}, fmt.Errorf("acm: write %s: %w", f.Cmd, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	want := f.Cmd.Reply()
	for {
		select {
		case r := <-c.replies:
			if r.Cmd != want {
				c.log.Debug().Stringer("got", r.Cmd).Stringer("want", want).Msg("stale reply")
				continue
			}
			return r, nil
		case <-c.done:
			return proto.Frame{}, ErrClosed
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return proto.Frame{}, fmt.Errorf("%w: %s", ErrTimeout, f.Cmd)
			}
			return proto.Frame{}, ctx.Err()
		}
	}
}

// Ping sends a NOP and returns the round trip time.
func (c *Conn) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := c.Request(ctx, proto.Frame{Cmd: proto.CmdNop}); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// GetUFN reads one user function key. A device-side failure is returned as
// a proto.ErrCode alongside the reply.
func (c *Conn) GetUFN(ctx context.Context, ufn uint8) (proto.UFNReply, error) {
	return c.ufnRequest(ctx, proto.GetUFN(ufn))
}

// SetUFN programs one user function key.
func (c *Conn) SetUFN(ctx context.Context, s proto.SetUFN) (proto.UFNReply, error) {
	return c.ufnRequest(ctx, s.Frame())
}

func (c *Conn) ufnRequest(ctx context.Context, f proto.Frame) (proto.UFNReply, error) {
	r, err := c.Request(ctx, f)
	if err != nil {
		return proto.UFNReply{}, err
	}
	reply, err := proto.ParseUFNReply(r.Data)
	if err != nil {
		return proto.UFNReply{}, fmt.Errorf("acm: %s reply: %w", f.Cmd, err)
	}
	if reply.Err != proto.ErrSuccess {
		return reply, reply.Err
	}
	return reply, nil
}

// ResetUFN restores the default user function keys.
func (c *Conn) ResetUFN(ctx context.Context) error {
	_, err := c.Request(ctx, proto.Frame{Cmd: proto.CmdResetUFN})
	return err
}

// FlashMode asks the keypad to reboot into its bootloader. The channel
// goes away shortly after the reply.
func (c *Conn) FlashMode(ctx context.Context) error {
	_, err := c.Request(ctx, proto.Frame{Cmd: proto.CmdFlashMode})
	return err
}

// Ports lists the serial devices that may be a keypad.
func Ports() []string {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range []string{"/dev/ttyACM*", "/dev/serial/by-id/*", "/dev/cu.usbmodem*"} {
		matches, _ := filepath.Glob(pattern)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out
}

// serialPort is a tty in raw mode; Close restores the previous mode.
type serialPort struct {
	*os.File
	state *term.State
}

func openSerial(path string) (*serialPort, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("acm: open %s: %w", path, err)
	}
	sp := &serialPort{File: f}
	if fd := int(f.Fd()); term.IsTerminal(fd) {
		st, err := term.MakeRaw(fd)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("acm: raw mode %s: %w", path, err)
		}
		sp.state = st
	}
	return sp, nil
}

func (s *serialPort) Close() error {
	if s.state != nil {
		_ = term.Restore(int(s.File.Fd()), s.state)
	}
	return s.File.Close()
}
