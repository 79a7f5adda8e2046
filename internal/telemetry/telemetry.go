// Package telemetry publishes macerator status to MQTT, with abstraction
// for testing.
package telemetry

import (
	"encoding/json"
	"time"
)

// Publisher sends telemetry to the broker. Sends are fire-and-forget: a
// failed publish is a local error for the caller to log, never to retry.
type Publisher interface {
	// Send publishes a key/value telemetry payload, e.g. {"wine_temp": 21.4}.
	Send(fields map[string]any) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// IsConnected reports whether the broker connection is active.
	IsConnected() bool

	// Close disconnects from the broker.
	Close() error
}

// Topics returns the telemetry and system topics for a device under the
// given prefix.
func Topics(prefix, device string) (telemetry, system string) {
	return prefix + "/" + device + "/telemetry", prefix + "/" + device + "/system"
}

// SystemEvent represents a system lifecycle event
// (e.g. startup, shutdown, completion, fatal error).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "COMPLETED", "FATAL"
	Reason     string // e.g. "SIGTERM", or the fatal error text
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// FormatFields creates the JSON payload for a telemetry send.
func FormatFields(fields map[string]any) ([]byte, error) {
	return json.Marshal(fields)
}
