// Package relay drives the mixing-pump relay with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package relay

// Driver switches the relay and reports its commanded state.
type Driver interface {
	// On energizes the relay (pump mixing).
	On() error

	// Off de-energizes the relay.
	Off() error

	// IsOn returns the last commanded state.
	IsOn() bool

	// Close releases GPIO resources, de-energizing the relay first.
	Close() error
}

// DefaultPin is the BCM line the relay board is wired to.
const DefaultPin = 18
