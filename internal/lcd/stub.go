//go:build !linux

package lcd

import "errors"

// RealDisplay is not available on non-Linux platforms.
type RealDisplay struct{}

// NewRealDisplay returns an error on non-Linux platforms.
func NewRealDisplay(bus int, addr byte) (*RealDisplay, error) {
	return nil, errors.New("lcd: not supported on this platform (requires Linux)")
}

// SetCursor is not implemented on non-Linux platforms.
func (d *RealDisplay) SetCursor(row, col int) error { return errors.New("lcd: not supported") }

// Write is not implemented on non-Linux platforms.
func (d *RealDisplay) Write(text string) error { return errors.New("lcd: not supported") }

// Clear is not implemented on non-Linux platforms.
func (d *RealDisplay) Clear() error { return errors.New("lcd: not supported") }

// Close is not implemented on non-Linux platforms.
func (d *RealDisplay) Close() error { return nil }
