//go:build !tinygo && !cgo

package hal

import "errors"

// RunWindow needs the ebiten backend, which needs cgo.
func RunWindow(func(HAL) func() error, HostConfig) error {
	return errors.New("hal: window mode needs cgo (CGO_ENABLED=1), or run with -headless")
}
