package telemetry

// FakePublisher records published payloads for test assertions.
type FakePublisher struct {
	// Sends contains every telemetry field set that was published.
	Sends []map[string]any

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SendError, if set, will be returned by Send.
	SendError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// Send records the telemetry fields.
func (f *FakePublisher) Send(fields map[string]any) error {
	if f.SendError != nil {
		return f.SendError
	}

	f.Sends = append(f.Sends, fields)

	payload, err := FormatFields(fields)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded payloads.
func (f *FakePublisher) Reset() {
	f.Sends = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SendError = nil
	f.PublishSystemError = nil
	f.Connected = true
	f.Closed = false
}
