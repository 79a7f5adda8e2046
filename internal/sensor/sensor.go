// Package sensor reads the wine temperature from a DS18B20 1-Wire probe.
// The real implementation reads the kernel w1-therm sysfs files.
// The fake implementation allows testing without hardware.
package sensor

import "errors"

// Reader reads the current temperature.
type Reader interface {
	// ReadTemperature returns the temperature in degrees Celsius.
	// A failed conversion or an unresponsive probe returns an error;
	// the caller is expected to continue and retry on its own schedule.
	ReadTemperature() (float64, error)

	// Close releases sensor resources.
	Close() error
}

// Sentinel errors for sensor failure modes.
var (
	// ErrNoDevice means the 1-Wire bus scan found no DS18B20.
	ErrNoDevice = errors.New("sensor: no DS18B20 device on the bus")

	// ErrCRC means the probe answered but the payload failed its CRC check.
	ErrCRC = errors.New("sensor: crc check failed")
)

// DefaultW1Dir is where the kernel w1 subsystem exposes bus devices.
const DefaultW1Dir = "/sys/bus/w1/devices"
