// Package board names the keypad's wiring in terms of HAL GPIO ids and LED
// bank bits.
package board

import "time"

// Matrix wiring. Key identity is row*Cols+col.
const (
	Rows = 5
	Cols = 5

	// FirstRowPin and FirstColPin are HAL GPIO ids; rows and columns are
	// consecutive from there.
	FirstRowPin = 0
	FirstColPin = FirstRowPin + Rows

	// RowSettle is how long a driven row is given before columns are sampled.
	RowSettle = 5 * time.Microsecond
)

// RowPin returns the GPIO id of row r.
func RowPin(r int) int { return FirstRowPin + r }

// ColPin returns the GPIO id of column c.
func ColPin(c int) int { return FirstColPin + c }

// LED bank bit positions.
const (
	LEDNumLock = iota
	LEDUFN1
	LEDUFN2
	LEDUFN3
	LEDUFN4
	LEDUFN5
	LEDMacroRecord
	LEDMacroPlay

	LEDCount
)
