package hal

import (
	"fmt"
	"sync"
)

// KeyMatrix simulates a row-driven switch matrix. Row pins are outputs;
// a column pin reads high while a driven row has a closed switch in it.
type KeyMatrix struct {
	mu     sync.Mutex
	rows   []*rowPin
	cols   []*columnPin
	closed []bool
}

// NewKeyMatrix returns a matrix with every switch open.
func NewKeyMatrix(rows, cols int) *KeyMatrix {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	m := &KeyMatrix{closed: make([]bool, rows*cols)}
	for r := 0; r < rows; r++ {
		m.rows = append(m.rows, &rowPin{name: fmt.Sprintf("ROW%d", r+1)})
	}
	for c := 0; c < cols; c++ {
		m.cols = append(m.cols, &columnPin{m: m, col: c, name: fmt.Sprintf("COL%d", c+1)})
	}
	return m
}

// Size returns the number of switches.
func (m *KeyMatrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.closed)
}

// Set opens or closes the switch at row*cols+col.
func (m *KeyMatrix) Set(index int, closed bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if index >= 0 && index < len(m.closed) {
		m.closed[index] = closed
	}
}

// Closed reports the switch at index.
func (m *KeyMatrix) Closed(index int) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return index >= 0 && index < len(m.closed) && m.closed[index]
}

// Pins returns the row pins followed by the column pins.
func (m *KeyMatrix) Pins() []GPIOPin {
	if m == nil {
		return nil
	}
	pins := make([]GPIOPin, 0, len(m.rows)+len(m.cols))
	for _, p := range m.rows {
		pins = append(pins, p)
	}
	for _, p := range m.cols {
		pins = append(pins, p)
	}
	return pins
}

// GPIO exposes Pins as a GPIO bank.
func (m *KeyMatrix) GPIO() GPIO { return pinBank(m.Pins()) }

// rowPin is a matrix row. It must be configured as an output before it is
// driven; reading it returns the driven level.
type rowPin struct {
	mu     sync.Mutex
	name   string
	output bool
	level  bool
}

func (p *rowPin) Name() string   { return p.name }
func (p *rowPin) Caps() GPIOCaps { return GPIOCapOutput }

func (p *rowPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: only output supported", p.name)
	}
	if pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: pull unsupported", p.name)
	}
	p.output = true
	return nil
}

func (p *rowPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output && p.level, nil
}

func (p *rowPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.output {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

type columnPin struct {
	mu   sync.Mutex
	m    *KeyMatrix
	col  int
	name string

	configured bool
	pull       GPIOPull
}

func (p *columnPin) Name() string { return p.name }
func (p *columnPin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapPullUp | GPIOCapPullDown
}

func (p *columnPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if mode != GPIOModeInput {
		return fmt.Errorf("gpio: pin %s: only input supported", p.name)
	}
	if pull > GPIOPullDown {
		return fmt.Errorf("gpio: pin %s: invalid pull", p.name)
	}
	p.configured = true
	p.pull = pull
	return nil
}

func (p *columnPin) Read() (bool, error) {
	p.mu.Lock()
	configured, pull := p.configured, p.pull
	p.mu.Unlock()

	switch {
	case !configured:
		return false, fmt.Errorf("gpio: pin %s: not configured for input", p.name)
	case pull == GPIOPullNone:
		return false, fmt.Errorf("gpio: pin %s: floating input", p.name)
	case pull == GPIOPullUp:
		return true, nil
	}

	cols := len(p.m.cols)
	for r, row := range p.m.rows {
		driven, _ := row.Read()
		if driven && p.m.Closed(r*cols+p.col) {
			return true, nil
		}
	}
	return false, nil
}

func (p *columnPin) Write(bool) error {
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}
