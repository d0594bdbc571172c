// Package logger writes prefixed log lines to the HAL logger and, once a
// console is attached, mirrors them on the display.
package logger

import (
	"fmt"
	"io"
	"sync"

	"simplenp/hal"
)

type sink struct {
	mu  sync.Mutex
	out hal.Logger
	tee io.Writer
}

// Logger is a cheap, copyable handle onto a shared sink.
type Logger struct {
	s      *sink
	prefix string
}

// New returns a logger over out. A nil out discards.
func New(out hal.Logger) Logger {
	return Logger{s: &sink{out: out}}
}

// With returns a logger whose lines start with "[prefix] ".
func (l Logger) With(prefix string) Logger {
	return Logger{s: l.s, prefix: "[" + prefix + "] "}
}

// Tee mirrors every line to w as well. A nil w stops mirroring.
func (l Logger) Tee(w io.Writer) {
	if l.s == nil {
		return
	}
	l.s.mu.Lock()
	l.s.tee = w
	l.s.mu.Unlock()
}

// Println logs s.
func (l Logger) Println(s string) {
	if l.s == nil {
		return
	}
	line := l.prefix + s

	l.s.mu.Lock()
	out, tee := l.s.out, l.s.tee
	l.s.mu.Unlock()

	if out != nil {
		out.WriteLineString(line)
	}
	if tee != nil {
		_, _ = io.WriteString(tee, line+"\n")
	}
}

// Printf logs a formatted line.
func (l Logger) Printf(format string, args ...any) {
	l.Println(fmt.Sprintf(format, args...))
}
