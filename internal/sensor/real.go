//go:build linux

package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RealReader reads a DS18B20 through the kernel w1-therm driver.
// Reads block for the conversion time (~750ms).
type RealReader struct {
	slavePath string
	deviceID  string
}

// NewRealReader scans the 1-Wire bus directory for a DS18B20 (family 28)
// and binds to the first one found. An empty bus is a startup error.
func NewRealReader(w1Dir string) (*RealReader, error) {
	entries, err := os.ReadDir(w1Dir)
	if err != nil {
		return nil, fmt.Errorf("scan w1 bus %s: %w", w1Dir, err)
	}

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "28-") {
			return &RealReader{
				slavePath: filepath.Join(w1Dir, e.Name(), "w1_slave"),
				deviceID:  e.Name(),
			}, nil
		}
	}
	return nil, ErrNoDevice
}

// DeviceID returns the bus ID of the bound probe (e.g. "28-0316a2...").
func (r *RealReader) DeviceID() string {
	return r.deviceID
}

// ReadTemperature triggers a conversion and returns the result in Celsius.
func (r *RealReader) ReadTemperature() (float64, error) {
	data, err := os.ReadFile(r.slavePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", r.slavePath, err)
	}
	return parseW1Payload(string(data))
}

// Close releases sensor resources. The sysfs driver holds no state.
func (r *RealReader) Close() error {
	return nil
}
