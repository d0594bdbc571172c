//go:build !tinygo

package hal

import (
	"errors"
	"net"
	"sync"
)

type nullSerial struct{}

func (nullSerial) Read(p []byte) (int, error)  { return 0, nil }
func (nullSerial) Write(p []byte) (int, error) { return len(p), nil }

// tcpSerial stands in for the USB CDC port: one client at a time, reads are
// buffered by a pump goroutine so Read never blocks.
type tcpSerial struct {
	ln     net.Listener
	logger Logger

	mu   sync.Mutex
	conn net.Conn
	rx   []byte
}

func listenSerial(addr string, logger Logger) (*tcpSerial, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &tcpSerial{ln: ln, logger: logger}
	logger.WriteLineString("cdc: listening on " + ln.Addr().String())
	go s.accept()
	return s, nil
}

func (s *tcpSerial) accept() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.conn = conn
		s.rx = s.rx[:0]
		s.mu.Unlock()
		s.logger.WriteLineString("cdc: client " + conn.RemoteAddr().String())
		go s.pump(conn)
	}
}

func (s *tcpSerial) pump(conn net.Conn) {
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.mu.Lock()
			if s.conn == conn {
				s.rx = append(s.rx, buf[:n]...)
			}
			s.mu.Unlock()
		}
		if err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			conn.Close()
			return
		}
	}
}

func (s *tcpSerial) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := copy(p, s.rx)
	s.rx = s.rx[n:]
	return n, nil
}

func (s *tcpSerial) Write(p []byte) (int, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		// Like CDC with no host attached: drop.
		return len(p), nil
	}
	return conn.Write(p)
}

func (s *tcpSerial) Addr() net.Addr { return s.ln.Addr() }

func (s *tcpSerial) Close() error {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
	return s.ln.Close()
}
