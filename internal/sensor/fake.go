package sensor

import "errors"

// FakeReader is a test double that returns scripted temperature values.
type FakeReader struct {
	// Samples contains scripted readings to return.
	// Each call to ReadTemperature() consumes the next sample.
	// When exhausted, the last sample is returned repeatedly.
	Samples []float64

	// index tracks current position in Samples
	index int

	// ReadError, if set, will be returned by ReadTemperature().
	ReadError error

	// Reads counts ReadTemperature calls, including failed ones.
	Reads int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []float64) *FakeReader {
	return &FakeReader{Samples: samples}
}

// ReadTemperature returns the next scripted sample.
func (f *FakeReader) ReadTemperature() (float64, error) {
	f.Reads++

	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
	f.ReadError = nil
}
