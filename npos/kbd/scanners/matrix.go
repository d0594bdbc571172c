// Package scanners holds kbd.Scanner implementations backed by hardware.
package scanners

import (
	"fmt"
	"time"

	"simplenp/hal"
	"simplenp/npos/board"
	"simplenp/npos/kbd"
)

// Matrix scans the row-driven switch matrix: each row is driven high in
// turn and the pulled-down columns are sampled.
type Matrix struct {
	rows   []hal.GPIOPin
	cols   []hal.GPIOPin
	settle func(time.Duration)

	bits uint32
	prev uint32
	err  error
}

// MatrixOption configures a Matrix.
type MatrixOption func(*Matrix)

// WithSettle replaces the busy-wait used after driving a row.
func WithSettle(fn func(time.Duration)) MatrixOption {
	return func(m *Matrix) { m.settle = fn }
}

// NewMatrix claims the board's row and column pins on g.
func NewMatrix(g hal.GPIO, opts ...MatrixOption) (*Matrix, error) {
	if g == nil {
		return nil, fmt.Errorf("matrix: no gpio")
	}
	m := &Matrix{settle: time.Sleep}
	for _, opt := range opts {
		opt(m)
	}

	for r := 0; r < board.Rows; r++ {
		p := g.Pin(board.RowPin(r))
		if p == nil {
			return nil, fmt.Errorf("matrix: row %d: no pin %d", r, board.RowPin(r))
		}
		if err := p.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
			return nil, fmt.Errorf("matrix: row %d: %w", r, err)
		}
		if err := p.Write(false); err != nil {
			return nil, fmt.Errorf("matrix: row %d: %w", r, err)
		}
		m.rows = append(m.rows, p)
	}
	for c := 0; c < board.Cols; c++ {
		p := g.Pin(board.ColPin(c))
		if p == nil {
			return nil, fmt.Errorf("matrix: col %d: no pin %d", c, board.ColPin(c))
		}
		if err := p.Configure(hal.GPIOModeInput, hal.GPIOPullDown); err != nil {
			return nil, fmt.Errorf("matrix: col %d: %w", c, err)
		}
		m.cols = append(m.cols, p)
	}
	return m, nil
}

// ScanOnce samples every switch. A pin error discards the sample.
func (m *Matrix) ScanOnce() bool {
	var bits uint32
	for r, row := range m.rows {
		if err := row.Write(true); err != nil {
			m.err = err
			return false
		}
		if m.settle != nil {
			m.settle(board.RowSettle)
		}
		for c, col := range m.cols {
			level, err := col.Read()
			if err != nil {
				_ = row.Write(false)
				m.err = err
				return false
			}
			if level {
				bits |= 1 << (r*board.Cols + c)
			}
		}
		if err := row.Write(false); err != nil {
			m.err = err
			return false
		}
	}
	m.prev, m.bits = m.bits, bits
	m.err = nil
	return true
}

// IsEmpty reports that the last sample equals the one before it.
func (m *Matrix) IsEmpty() bool { return m.bits == m.prev }

// TakeState claims every physical key.
func (m *Matrix) TakeState(key kbd.Key) (bool, bool) {
	if !key.Physical() {
		return false, false
	}
	return m.bits&(1<<key) != 0, true
}

// Bits returns the last sample, one bit per key.
func (m *Matrix) Bits() uint32 { return m.bits }

// Err returns the pin error that discarded the last sample, if any.
func (m *Matrix) Err() error { return m.err }
