//go:build !tinygo && !cgo

package hal

// Without cgo there is no window to read keys from; headless runs drive the
// matrix from a script instead.
type hostKeyboard struct{}

func newHostKeyboard(*KeyMatrix, *hostHID) *hostKeyboard { return &hostKeyboard{} }

func (*hostKeyboard) poll() {}
