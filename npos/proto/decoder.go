package proto

type decodeState uint8

const (
	waitSTX decodeState = iota
	waitCmd
	waitLen
	waitData
	waitETX
	waitChk
)

// Decoder reassembles frames from a byte stream. Bytes before an STX are
// skipped; frames with a bad length or checksum are dropped.
type Decoder struct {
	state decodeState
	cmd   Cmd
	n     int
	data  [MaxData]byte
	got   int
	etx   byte

	// Dropped counts frames discarded for a bad length or checksum.
	Dropped int
}

// Push feeds one byte. It returns a frame once one is complete and valid.
// The frame's Data aliases the decoder and is valid until the next Push.
func (d *Decoder) Push(b byte) (Frame, bool) {
	switch d.state {
	case waitSTX:
		if b == STX {
			d.state = waitCmd
		}
	case waitCmd:
		d.cmd = Cmd(b)
		d.state = waitLen
	case waitLen:
		if int(b) > MaxData {
			d.Dropped++
			d.Reset()
			break
		}
		d.n, d.got = int(b), 0
		d.state = waitData
		if d.n == 0 {
			d.state = waitETX
		}
	case waitData:
		d.data[d.got] = b
		d.got++
		if d.got == d.n {
			d.state = waitETX
		}
	case waitETX:
		d.etx = b
		d.state = waitChk
	case waitChk:
		f := Frame{Cmd: d.cmd, Data: d.data[:d.n]}
		ok := b == d.checksum()
		d.Reset()
		if !ok {
			d.Dropped++
			return Frame{}, false
		}
		return f, true
	}
	return Frame{}, false
}

// Reset drops any partial frame.
func (d *Decoder) Reset() {
	d.state = waitSTX
	d.n, d.got = 0, 0
}

// The received ETX is summed as sent rather than assumed.
func (d *Decoder) checksum() byte {
	sum := uint16(STX) + uint16(d.cmd) + uint16(d.n) + uint16(d.etx)
	for _, b := range d.data[:d.n] {
		sum += uint16(b)
	}
	return byte(sum)
}
