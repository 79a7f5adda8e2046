//go:build !linux

package relay

import "errors"

// RealDriver is not available on non-Linux platforms.
type RealDriver struct{}

// NewRealDriver returns an error on non-Linux platforms.
func NewRealDriver(pin int) (*RealDriver, error) {
	return nil, errors.New("relay: not supported on this platform (requires Linux)")
}

// On is not implemented on non-Linux platforms.
func (r *RealDriver) On() error { return errors.New("relay: not supported") }

// Off is not implemented on non-Linux platforms.
func (r *RealDriver) Off() error { return errors.New("relay: not supported") }

// IsOn is not implemented on non-Linux platforms.
func (r *RealDriver) IsOn() bool { return false }

// Close is not implemented on non-Linux platforms.
func (r *RealDriver) Close() error { return nil }
