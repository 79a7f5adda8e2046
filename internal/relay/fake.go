package relay

// FakeDriver is a test double that records switch commands.
type FakeDriver struct {
	// History contains every commanded state, in order (true = on).
	History []bool

	// on is the last commanded state.
	on bool

	// Closed tracks if Close was called.
	Closed bool

	// OnError, if set, will be returned by On().
	OnError error

	// OffError, if set, will be returned by Off().
	OffError error
}

// NewFakeDriver creates a FakeDriver in the off state.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// On records an on command.
func (f *FakeDriver) On() error {
	if f.OnError != nil {
		return f.OnError
	}
	f.on = true
	f.History = append(f.History, true)
	return nil
}

// Off records an off command.
func (f *FakeDriver) Off() error {
	if f.OffError != nil {
		return f.OffError
	}
	f.on = false
	f.History = append(f.History, false)
	return nil
}

// IsOn returns the last commanded state.
func (f *FakeDriver) IsOn() bool {
	return f.on
}

// Close marks the driver as closed and switches it off.
func (f *FakeDriver) Close() error {
	f.on = false
	f.Closed = true
	return nil
}

// Reset clears recorded history.
func (f *FakeDriver) Reset() {
	f.History = nil
	f.on = false
	f.Closed = false
	f.OnError = nil
	f.OffError = nil
}
