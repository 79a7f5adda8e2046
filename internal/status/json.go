package status

import (
	"encoding/json"
	"time"

	"github.com/damiancyrana/wine-macerator/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Relay         string     `json:"relay"`
	WineTemp      *float64   `json:"wine_temp"` // null while the sentinel is set
	MixEndsAt     string     `json:"mix_ends_at,omitempty"`
	NextMixAt     string     `json:"next_mix_at,omitempty"`
	NextTempAt    string     `json:"next_temp_at,omitempty"`
	MacerationEnd string     `json:"maceration_end,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of scheduler activity counts.
type CountsJSON struct {
	MixCycles  int `json:"mix_cycles"`
	TempReads  int `json:"temp_reads"`
	TempErrors int `json:"temp_errors"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	MixForMs     int64  `json:"mix_for_ms"`
	MixEveryMs   int64  `json:"mix_every_ms"`
	TempEveryMs  int64  `json:"temp_every_ms"`
	MacerationMs int64  `json:"maceration_ms"`
	Broker       string `json:"broker"`
	Device       string `json:"device"`
	HTTPAddr     string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Relay:         string(snap.Relay),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			MixCycles:  snap.Counts.MixCycles,
			TempReads:  snap.Counts.TempReads,
			TempErrors: snap.Counts.TempErrors,
		},
		Config: ConfigJSON{
			MixForMs:     snap.Config.MixForMs,
			MixEveryMs:   snap.Config.MixEveryMs,
			TempEveryMs:  snap.Config.TempEveryMs,
			MacerationMs: snap.Config.MacerationMs,
			Broker:       snap.Config.Broker,
			Device:       snap.Config.Device,
			HTTPAddr:     snap.Config.HTTPAddr,
		},
	}

	if snap.LastTemp.OK() {
		v := snap.LastTemp.Celsius
		inner.WineTemp = &v
	}

	if !snap.RelayDeadline.IsZero() {
		ts := snap.RelayDeadline.UTC().Format(time.RFC3339)
		if snap.Relay == logic.RelayMixing {
			inner.MixEndsAt = ts
		} else {
			inner.NextMixAt = ts
		}
	}
	if !snap.NextTempUpdate.IsZero() {
		inner.NextTempAt = snap.NextTempUpdate.UTC().Format(time.RFC3339)
	}
	if !snap.MacerationEnd.IsZero() {
		inner.MacerationEnd = snap.MacerationEnd.UTC().Format(time.RFC3339)
	}

	return inner
}

// FormatStatus renders the snapshot as the JSON status envelope.
func FormatStatus(snap Snapshot) []byte {
	out, err := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	if err != nil {
		// Marshaling a value struct of plain fields cannot fail in practice.
		return []byte(`{"status":{}}`)
	}
	return out
}

// FormatStatusEvent renders the snapshot as a system-event payload with the
// given event name and reason, for use as a SystemEvent RawPayload.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	out, err := json.Marshal(StatusJSON{Status: inner})
	if err != nil {
		return []byte(`{"status":{}}`)
	}
	return out
}
