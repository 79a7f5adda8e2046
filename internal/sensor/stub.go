//go:build !linux

package sensor

import "errors"

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(w1Dir string) (*RealReader, error) {
	return nil, errors.New("sensor: not supported on this platform (requires Linux)")
}

// DeviceID is not implemented on non-Linux platforms.
func (r *RealReader) DeviceID() string { return "" }

// ReadTemperature is not implemented on non-Linux platforms.
func (r *RealReader) ReadTemperature() (float64, error) {
	return 0, errors.New("sensor: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error { return nil }
