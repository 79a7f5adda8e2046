//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Relay boards in this rig are active-low: driving the line low closes the
// contact. The driver hides that inversion behind On/Off.
const (
	lineOn  = 0
	lineOff = 1
)

// RealDriver drives the relay through the Linux GPIO character device.
type RealDriver struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	on   bool
}

// NewRealDriver requests the given BCM line as an output, de-energized.
func NewRealDriver(pin int) (*RealDriver, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(lineOff))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}

	return &RealDriver{chip: chip, line: line}, nil
}

// On energizes the relay.
func (r *RealDriver) On() error {
	if err := r.line.SetValue(lineOn); err != nil {
		return fmt.Errorf("relay on: %w", err)
	}
	r.on = true
	return nil
}

// Off de-energizes the relay.
func (r *RealDriver) Off() error {
	if err := r.line.SetValue(lineOff); err != nil {
		return fmt.Errorf("relay off: %w", err)
	}
	r.on = false
	return nil
}

// IsOn returns the last commanded state.
func (r *RealDriver) IsOn() bool {
	return r.on
}

// Close de-energizes the relay and releases the GPIO line. The line is left
// as an output holding the off level so the pump cannot restart between
// process exit and the next boot.
func (r *RealDriver) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.SetValue(lineOff); err != nil {
			errs = append(errs, fmt.Errorf("final off: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
